package task

import "sort"

// Expand cross-products an endpoint list with an optional credential list
// into a stream of Tasks, pushed onto out endpoint by endpoint in input
// order, with each endpoint's credentials applied in (username, password)
// order. With zero credentials, exactly one Task per
// endpoint is produced (unauthenticated is never implicitly added on top
// of a non-empty credential list). Expand closes out after the last task
// and respects cancellation via done.
func Expand(endpoints []Endpoint, creds []Credential, out chan<- Task, done <-chan struct{}) {
	defer close(out)

	sorted := make([]Credential, len(creds))
	copy(sorted, creds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	for _, e := range endpoints {
		if len(sorted) == 0 {
			select {
			case out <- Task{Endpoint: e}:
			case <-done:
				return
			}
			continue
		}
		for _, c := range sorted {
			select {
			case out <- Task{Endpoint: e, Credential: c}:
			case <-done:
				return
			}
		}
	}
}

// Count returns the number of tasks Expand would produce for the given
// endpoint and credential counts, matching invariant 2 of the spec:
// |tasks| = |endpoints| when K=0, |tasks| = K*|endpoints| when K>0.
func Count(numEndpoints, numCreds int) int {
	if numCreds == 0 {
		return numEndpoints
	}
	return numEndpoints * numCreds
}
