package database

import "database/sql"

// 零成交量多半是供应商缺数据，存 NULL 与缺失区分开。
func nullIfZero(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullablePtr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func ptrFromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
