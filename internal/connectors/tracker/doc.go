// Package tracker harvests issues and their comments from an issue-tracking
// service over its REST API (version 2).
//
// Search results and comment listings use startAt/maxResults pagination and
// end once the reported total falls below the page size.
package tracker
