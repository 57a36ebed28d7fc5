package ratelimit

// Config interface for quota configuration
type Config interface {
	GetDisableQuota() bool
	GetMonthlyOCRLimit() int
}

// QuotaResult contains the result of a quota check
type QuotaResult struct {
	ShouldBlock bool
	Remaining   int // -1 when unlimited
	Reason      string
}

// CheckMonthlyQuota decides whether another OCR provider call is allowed
// given the calls already recorded this month
func CheckMonthlyQuota(cfg Config, used int) QuotaResult {
	if cfg.GetDisableQuota() {
		return QuotaResult{
			Remaining: -1,
			Reason:    "quota_disabled",
		}
	}

	limit := cfg.GetMonthlyOCRLimit()
	if limit <= 0 {
		return QuotaResult{
			Remaining: -1,
			Reason:    "unlimited",
		}
	}

	if used >= limit {
		return QuotaResult{
			ShouldBlock: true,
			Remaining:   0,
			Reason:      "monthly_limit_reached",
		}
	}

	return QuotaResult{
		Remaining: limit - used,
		Reason:    "within_limit",
	}
}
