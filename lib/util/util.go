// Package util contains helper functions used around the code.
package util

// In returns true if s is found in ss, false otherwise
func In[T comparable](ss []T, s T) bool {
	for _, v := range ss {
		if s == v {
			return true
		}
	}

	return false
}

// Short abbreviates a ledger account id for log lines, ie. GABC…WXYZ.
func Short(id string) string {
	if len(id) <= 12 {
		return id
	}

	return id[:4] + "…" + id[len(id)-4:]
}
