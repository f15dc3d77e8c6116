package audit_logs

import "time"

// QueryOptions is the closed set of recognized filters for audit
// queries. Unknown filters do not exist: callers get exactly these.
type QueryOptions struct {
	Limit      int         `form:"limit"      json:"limit"`
	Offset     int         `form:"offset"     json:"offset"`
	BeforeDate *time.Time  `form:"beforeDate" json:"beforeDate"`
	Method     *JoinMethod `form:"method"     json:"method"` // join logs only
}

type GetRoleChangesResponse struct {
	RoleChanges []*RoleChangeLog `json:"roleChanges"`
	Limit       int              `json:"limit"`
	Offset      int              `json:"offset"`
}

type GetJoinLogsResponse struct {
	JoinLogs []*MemberJoinLog `json:"joinLogs"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}
