// Package checks holds the individual integrity checks: media bucket existence and
// database schema drift against the GORM models.
package checks
