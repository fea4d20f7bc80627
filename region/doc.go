// Package region decodes flash regions and protected ranges and derives the
// host's access permissions for each region.
//
// Permissions come from the FRAP access-rights register on legacy
// generations, or from the BIOS master's grant bitmap in the flash
// descriptor on the 100-series and newer. Protected ranges only ever
// tighten a derived permission.
package region
