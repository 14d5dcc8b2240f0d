package utils

import "strconv"

func ToInt64(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
