// Package pipeline runs the state → county → scrape loop and accumulates records.
//
// Each county yields its own record slice. Slices are stored by the county's position
// in the server's list and concatenated once every county of a state has finished,
// so the dataset order matches a sequential crawl regardless of worker count.
// Any error aborts the run and no partial dataset is returned.
package pipeline
