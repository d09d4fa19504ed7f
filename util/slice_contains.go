package util

// SliceContains - Whether val is one of the strings in arr
func SliceContains(arr []string, val string) bool {
	for _, v := range arr {
		if v == val {
			return true
		}
	}
	return false
}
