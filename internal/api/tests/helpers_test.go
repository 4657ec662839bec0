package api_test

import "strconv"

func pathWithID(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}
