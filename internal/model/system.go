package model

// VersionInfo describes the running build and the schema it expects.
type VersionInfo struct {
	AppVersion    string          `json:"app_version"`
	DbVersion     int64           `json:"db_version"`
	Features      map[string]bool `json:"features"`
	PoolMethods   []string        `json:"pool_methods"`
	DefaultMethod string          `json:"default_method"`
}
