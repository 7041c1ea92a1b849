// Package utils provides common utility functions for shared-save.
// It includes strict number conversion used when reading counters out of decoded JSON.
package utils
