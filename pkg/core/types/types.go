package types

type RuleDirection string

const (
	DirectionIngress RuleDirection = "ingress"
	DirectionEgress  RuleDirection = "egress"
)

// Rule is a single ingress or egress entry of a Security Group.
// ReferencedGroupId is empty when the rule targets a CIDR range instead of
// another Security Group.
type Rule struct {
	Direction         RuleDirection `json:"direction"`
	Protocol          string        `json:"protocol"`
	FromPort          int32         `json:"fromPort"`
	ToPort            int32         `json:"toPort"`
	ReferencedGroupId string        `json:"referencedGroupId,omitempty"`
}

type SecurityGroup struct {
	Region       string `json:"region"`
	Id           string `json:"groupId"`
	Name         string `json:"groupName"`
	Description  string `json:"description"`
	VpcId        string `json:"vpcId"`
	Default      bool   `json:"default"`
	IngressRules []Rule `json:"ingressRules"`
	EgressRules  []Rule `json:"egressRules"`
}

// NewSecurityGroup creates a new SecurityGroup record. The Default flag is
// derived from the group name, the convention AWS uses for the per-VPC
// default group.
func NewSecurityGroup(region, id, name, description, vpcId string, ingress, egress []Rule) SecurityGroup {
	return SecurityGroup{
		Region:       region,
		Id:           id,
		Name:         name,
		Description:  description,
		VpcId:        vpcId,
		Default:      name == "default",
		IngressRules: ingress,
		EgressRules:  egress,
	}
}

type Instance struct {
	Id       string   `json:"instanceId"`
	Name     string   `json:"name,omitempty"`
	State    string   `json:"state"`
	GroupIds []string `json:"groupIds"`
}

type NetworkInterface struct {
	Id          string   `json:"interfaceId"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	VpcId       string   `json:"vpcId"`
	GroupIds    []string `json:"groupIds"`

	// Owner is filled by the optional annotation step only. It identifies the
	// AWS resource which manages an interface that still holds the group.
	Owner *InterfaceOwner `json:"owner,omitempty"`
}

// InterfaceOwner identifies the resource behind a network interface, resolved
// from the interface description: a Lambda function, an ECS task or a load
// balancer.
type InterfaceOwner struct {
	Kind      string  `json:"kind"`
	Name      string  `json:"name"`
	Arn       *string `json:"arn,omitempty"`
	IsRemoved bool    `json:"isRemoved"`
}

// InstanceAttachment is the instance view kept per security group: enough to
// explain why the group is considered in use.
type InstanceAttachment struct {
	InstanceId string `json:"instanceId"`
	Name       string `json:"name,omitempty"`
	State      string `json:"state"`
}

// GroupReference records that one security group rule names another group as
// its source or destination. It is indexed by the referenced group, so the
// referencing side is carried explicitly. A group may reference itself.
type GroupReference struct {
	ReferencedGroupId    string        `json:"referencedGroupId"`
	ReferencingGroupId   string        `json:"referencingGroupId"`
	ReferencingGroupName string        `json:"referencingGroupName"`
	Direction            RuleDirection `json:"direction"`
	Protocol             string        `json:"protocol"`
	FromPort             int32         `json:"fromPort"`
	ToPort               int32         `json:"toPort"`
}
