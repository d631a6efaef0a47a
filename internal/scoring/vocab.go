package scoring

// Fixed domain vocabularies behind the significance heuristic. Terms are
// matched case-insensitively on word boundaries; each term counts once per
// text regardless of repetition.

type weightedTerm struct {
	term   string
	weight int
}

var escalationTerms = []weightedTerm{
	{"urgent", 2},
	{"urgently", 2},
	{"immediately", 2},
	{"critical", 2},
	{"emergency", 2},
	{"act now", 2},
	{"right away", 2},
	{"warning", 1},
	{"alert", 1},
	{"soon", 1},
	{"quickly", 1},
	{"sharp", 1},
	{"sharply", 1},
	{"sudden", 1},
	{"spike", 1},
	{"surge", 1},
	{"plunge", 1},
	{"tumble", 1},
}

var deescalationTerms = []weightedTerm{
	{"no action needed", 2},
	{"no action required", 2},
	{"stay the course", 2},
	{"stable", 1},
	{"steady", 1},
	{"calm", 1},
	{"gradual", 1},
	{"gradually", 1},
	{"unchanged", 1},
	{"as planned", 1},
	{"no change", 1},
}

var strongActionTerms = []weightedTerm{
	{"sell", 3},
	{"buy", 3},
	{"exit", 3},
	{"liquidate", 3},
	{"rebalance", 3},
	{"reduce", 3},
	{"increase", 3},
	{"shift", 3},
	{"switch", 3},
	{"halt", 3},
	{"stop", 3},
}

var actionEscalationTerms = []weightedTerm{
	{"urgent", 2},
	{"urgently", 2},
	{"immediately", 2},
	{"critical", 2},
	{"emergency", 2},
	{"must", 2},
}

var softSuggestionTerms = []weightedTerm{
	{"consider", 1},
	{"suggest", 1},
	{"recommend", 1},
	{"may", 1},
	{"might", 1},
	{"could", 1},
	{"review", 1},
	{"monitor", 1},
	{"watch", 1},
	{"evaluate", 1},
}

var holdTerms = []weightedTerm{
	{"hold", 0},
	{"maintain", 0},
	{"keep", 0},
	{"stay", 0},
}

var riskTerms = []weightedTerm{
	{"crash", 3},
	{"collapse", 3},
	{"recession", 3},
	{"crisis", 3},
	{"default", 3},
	{"volatile", 2},
	{"volatility", 2},
	{"drawdown", 2},
	{"bubble", 2},
	{"correction", 2},
	{"bear market", 2},
	{"risk", 1},
	{"risks", 1},
	{"uncertainty", 1},
	{"downside", 1},
	{"loss", 1},
	{"losses", 1},
	{"exposure", 1},
}

var marketTerms = []weightedTerm{
	{"rate hike", 2},
	{"rate cut", 2},
	{"fed", 2},
	{"federal reserve", 2},
	{"inflation", 2},
	{"interest rates", 2},
	{"cpi", 2},
	{"earnings", 1},
	{"market", 1},
	{"gdp", 1},
	{"economy", 1},
	{"sector", 1},
	{"index", 1},
	{"yields", 1},
	{"treasury", 1},
}

// instabilityTerms relax the notification threshold when present.
var instabilityTerms = []string{
	"volatile",
	"volatility",
	"unstable",
	"turbulent",
	"turmoil",
	"crash",
	"plunge",
	"swings",
}
