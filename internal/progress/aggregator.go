package progress

// UserProgress completion of one lesson by one user
type UserProgress struct {
	ContentTotalDone        int `json:"contentTotalDone"`
	ContentTotalDonePercent int `json:"contentTotalDonePercent"`
}

// Summary derived counters attached to a projected lesson
type Summary struct {
	ContentTotal            int          `json:"contentTotal"`
	ContentTotalIsEstimated int          `json:"contentTotalIsEstimated"`
	UserProgress            UserProgress `json:"userProgress"`
}

// DonePercent floor(done / estimated * 100) in integer arithmetic.
// A lesson without estimated items reports 0. The value is not capped at 100.
func DonePercent(done, estimated int) int {
	if estimated <= 0 || done <= 0 {
		return 0
	}
	return done * 100 / estimated
}

// Aggregate builds the summary of a lesson holding total items, estimated of
// them counted towards completion, and done recorded attempts of the user
func Aggregate(total, estimated, done int) Summary {
	return Summary{
		ContentTotal:            total,
		ContentTotalIsEstimated: estimated,
		UserProgress: UserProgress{
			ContentTotalDone:        done,
			ContentTotalDonePercent: DonePercent(done, estimated),
		},
	}
}
