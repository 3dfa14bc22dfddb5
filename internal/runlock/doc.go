// Package runlock serializes reconciliation runs on one host with a
// non-blocking flock, so a cron run and a manual run never overlap and the
// lookup rate limit stays global across processes.
package runlock
