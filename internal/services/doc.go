// Package services holds shared error classification and context plumbing for
// the external tool clients and pipeline stages.
package services
