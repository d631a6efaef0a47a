package common

const (
	KEY_INSTRUMENT_BY_ID     = "instrument:id:%d"
	KEY_INSTRUMENT_BY_SYMBOL = "instrument:symbol:%s"
	KEY_LATEST_ANALYSIS      = "analysis:latest:%d:%s"
	KEY_LATEST_TICK          = "tick:latest"
)

const (
	CYCLE_DAILY   = "daily"
	CYCLE_WEEKLY  = "weekly"
	CYCLE_MONTHLY = "monthly"
)

func GetCycleList() []string {
	return []string{
		CYCLE_DAILY,
		CYCLE_WEEKLY,
		CYCLE_MONTHLY,
	}
}

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
