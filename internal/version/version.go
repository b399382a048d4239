// ABOUTME: Version and product identification
// ABOUTME: Reported in logs and the monitor hello message
package version

const (
	// Version is the software version
	Version = "0.3.0"

	// Product is the product name
	Product = "BISON Audio Bridge"

	// Manufacturer identifies the maintainers
	Manufacturer = "2IC80 Lab"
)
