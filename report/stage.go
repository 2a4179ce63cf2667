package report

// Stage is where a generation run currently is. Stages advance
// strictly forward; a run ends in StageSaved or StageFailed.
type Stage int

const (
	StageIdle Stage = iota
	StagePreparing
	StageTitlePage
	StageTeamPage
	StageLegendPage
	StageOverviewPages
	StageDetailPages
	StageFooterPass
	StageSaved
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePreparing:
		return "preparing"
	case StageTitlePage:
		return "title page"
	case StageTeamPage:
		return "team page"
	case StageLegendPage:
		return "legend page"
	case StageOverviewPages:
		return "overview maps"
	case StageDetailPages:
		return "detail pages"
	case StageFooterPass:
		return "footer pass"
	case StageSaved:
		return "saved"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}
