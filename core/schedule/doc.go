// Package schedule computes power availability from per-user outage
// schedules over a single day. It derives availability windows as the
// complement of a user's outages, intersects availability across users
// and finds the "all but one" windows used for N-1 reports.
package schedule
