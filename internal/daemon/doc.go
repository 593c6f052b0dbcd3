// Package daemon supervises the long-running lezioned process: it enforces
// single-instance execution through a lock file, resets lessons stranded by
// an unclean shutdown, and owns the workflow manager's lifecycle. The IPC and
// web surfaces call into it for lesson operations and status.
package daemon
