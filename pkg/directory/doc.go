// Package directory abstracts the external user/role directory service that
// recipient resolution and settings validation read from.
package directory
