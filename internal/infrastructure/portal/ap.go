package portal

import "tenderscan/internal/domain"

const (
	apBase       = "https://tender.apeprocurement.gov.in"
	apTendersURL = apBase + "/nicgep/app?page=FrontEndLatestActiveTenders&service=page"
)

// NewAP returns the Andhra Pradesh eProcurement scraper. The portal runs the
// stock NIC platform; it is the only one observed publishing a value column,
// so the budget scan is on.
func NewAP(deps Deps) *nicPortal {
	return &nicPortal{
		key:        "ap_eprocurement",
		name:       domain.PortalAP,
		base:       apBase,
		listURL:    apTendersURL,
		location:   "Andhra Pradesh",
		scanBudget: true,
		deps:       deps,
	}
}
