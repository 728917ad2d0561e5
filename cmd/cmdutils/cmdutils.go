package cmdutils

import (
	"github.com/pterm/pterm"

	coreTypes "sg-audit/pkg/core/types"
)

// GetCategoryLabelColor returns the report label of the category stylized by
// how risky a removal would be.
func GetCategoryLabelColor(category coreTypes.Category) string {
	label := category.Label()
	switch category {
	case coreTypes.CategoryDefault:
		return pterm.LightRed(label)
	case coreTypes.CategoryUnused:
		return pterm.LightGreen(label)
	case coreTypes.CategoryInterfaces, coreTypes.CategoryInterfacesAndReferences:
		return pterm.LightYellow(label)
	case coreTypes.CategoryReferenced:
		return pterm.LightCyan(label)
	}
	return label
}

// GetInterfaceStatusColor stylizes a network interface status.
func GetInterfaceStatusColor(status string) string {
	var stylized string
	if status == "in-use" {
		stylized = pterm.LightRed(status)
	} else {
		if status == "available" {
			stylized = pterm.LightGreen(status)
		} else {
			stylized = pterm.LightYellow(status)
		}
	}
	return stylized
}
