package model

import (
	"database/sql"
	"time"
)

type HealthCheck struct {
	Time    time.Time     `json:"time"`
	Latency sql.NullInt64 `json:"latency"`
	Code    sql.NullInt64 `json:"code"`
}

func (c *HealthCheck) IsSuccessful() bool {
	return c.Code.Valid && c.Code.Int64 == 200
}
