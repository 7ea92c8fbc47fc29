package store

import "database/sql"

func getAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func isAffected(res sql.Result) (bool, error) {
	n, err := getAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
