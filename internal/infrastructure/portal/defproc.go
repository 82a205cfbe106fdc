package portal

import "tenderscan/internal/domain"

const (
	defprocBase       = "https://defproc.gov.in"
	defprocTendersURL = defprocBase + "/nicgep/app?page=FrontEndLatestActiveTenders&service=page"
)

// NewDefproc returns the MoD eProcurement scraper. Eastern Naval Command
// tenders for Visakhapatnam arrive through this portal, which is why the
// filter engine gives it the defence priority bonus.
func NewDefproc(deps Deps) *nicPortal {
	return &nicPortal{
		key:     "defproc",
		name:    domain.PortalDefproc,
		base:    defprocBase,
		listURL: defprocTendersURL,
		deps:    deps,
	}
}
