package domain

// Canonical portal display names. The filter engine keys its defence-sector
// priority bonus on these, so scrapers must use them verbatim.
const (
	PortalGeM     = "GeM"
	PortalCPPP    = "CPPP (Central eProcure)"
	PortalAP      = "AP eProcurement"
	PortalHSL     = "HSL (Hindustan Shipyard)"
	PortalDefproc = "defproc (Defence)"
)
