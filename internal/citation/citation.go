// Package citation defines the core entities of the citation-processing
// pipeline: Citation, Cluster, Job, and Result. Citations and Clusters are
// request-scoped: they never outlive a single pipeline run and are never
// persisted directly, only serialized into a Result.
package citation

// ReporterFamily identifies the reporter series a citation belongs to.
type ReporterFamily string

const (
	ReporterFamilyPacific   ReporterFamily = "pacific"
	ReporterFamilyAtlantic  ReporterFamily = "atlantic"
	ReporterFamilyNorthWest ReporterFamily = "northwest"
	ReporterFamilyNorthEast ReporterFamily = "northeast"
	ReporterFamilySouth     ReporterFamily = "south"
	ReporterFamilySouthEast ReporterFamily = "southeast"
	ReporterFamilySouthWest ReporterFamily = "southwest"
	ReporterFamilyWashington ReporterFamily = "washington"
	ReporterFamilyUS        ReporterFamily = "us"
	ReporterFamilySCt       ReporterFamily = "sct"
	ReporterFamilyLEd       ReporterFamily = "led"
	ReporterFamilyFed       ReporterFamily = "fed"
	ReporterFamilyFSupp     ReporterFamily = "fsupp"
	ReporterFamilyFRD       ReporterFamily = "frd"
	ReporterFamilyBR        ReporterFamily = "br"
	ReporterFamilyWL        ReporterFamily = "wl"
	ReporterFamilyLexis     ReporterFamily = "lexis"
	ReporterFamilyNeutral   ReporterFamily = "neutral"
	ReporterFamilyUnknown   ReporterFamily = "unknown"
)

// VerificationSource identifies which external source, structured or
// HTML fallback, produced a citation's canonical fields.
type VerificationSource string

const (
	VerificationSourceNone          VerificationSource = ""
	VerificationSourceCourtListener VerificationSource = "courtlistener"
	VerificationSourceJustia        VerificationSource = "justia"
	VerificationSourceLeagle        VerificationSource = "leagle"
	VerificationSourceCaseText      VerificationSource = "casetext"
	VerificationSourceCornellLII    VerificationSource = "cornell_lii"
	VerificationSourceFindLaw       VerificationSource = "findlaw"
	VerificationSourceCaseMine      VerificationSource = "casemine"
	VerificationSourceVLex          VerificationSource = "vlex"
	VerificationSourceOpenJurist    VerificationSource = "openjurist"
	VerificationSourceGoogleScholar VerificationSource = "google_scholar"
)

// Citation is a single reference to a case as it appears in the document.
//
// extracted_* fields are derived purely from document text and never
// depend on canonical data; canonical_* fields are populated only by
// verification and never overwrite extracted data. ClusterID resolves
// the Citation<->Cluster cyclic reference via an arena index into the
// request's Cluster slice rather than a pointer, so the struct stays
// plain-data and trivially serializable.
type Citation struct {
	Text           string         `json:"text"`            // canonical normalized form, e.g. "166 Wash.2d 974"
	RawText        string         `json:"raw_text"`         // as found in the document
	Start          int            `json:"start"`            // byte offset into the cleaned source text
	End            int            `json:"end"`              // byte offset, exclusive
	Reporter       string         `json:"reporter"`         // parsed reporter abbreviation
	Volume         string         `json:"volume"`           // parsed volume number
	Page           string         `json:"page"`             // parsed starting page
	ReporterFamily ReporterFamily `json:"reporter_family"`

	ExtractedCaseName *string `json:"extracted_case_name"` // nil if not found, never backfilled from canonical data
	ExtractedYear     *int    `json:"extracted_year"`      // nil if not found

	CanonicalName   *string            `json:"canonical_name"`
	CanonicalDate   *string            `json:"canonical_date"`
	CanonicalURL    *string            `json:"canonical_url"`
	Verified        bool               `json:"verified"`
	TrueByParallel  bool               `json:"true_by_parallel"` // true when Verified was inherited from a cluster peer
	VerificationSrc VerificationSource `json:"verification_source"`

	// ClusterID is the index into the request's Cluster slice this
	// citation belongs to, or -1 if not yet clustered. It is the same
	// value the cluster exposes as Cluster.ID, so the two join by value.
	ClusterID int `json:"cluster_id"`
}

// Valid reports whether the citation satisfies the structural invariants
// from spec §3: start < end, and verification state is consistent.
func (c *Citation) Valid() bool {
	if c.Start >= c.End {
		return false
	}
	if c.Verified && !c.TrueByParallel && c.VerificationSrc == VerificationSourceNone {
		// direct verification requires a source; true_by_parallel does not
		return false
	}
	return true
}

// Cluster is a set of citations treated as parallel references to one case.
//
// Members is stored as indices into the request's Citation slice
// (MemberIndices), not as embedded Citation values or pointers, for the
// same arena-index reason as Citation.ClusterID: it keeps the data model
// acyclic and trivially serializable. ID is that same arena index — the
// cluster's position in the request's Cluster slice — so it is stable
// and reproducible across runs of the same input and joins directly
// against Citation.ClusterID (spec §6.1's citation-to-cluster link).
// MemberIndices never leaves this process: it is excluded from the
// public JSON shape in favor of Citations, the resolved member-text
// list spec §6.1 requires.
type Cluster struct {
	ID            int      `json:"id"`
	MemberIndices []int    `json:"-"`
	Citations     []string `json:"citations"` // member citations' normalized text, document order

	// Display-time snapshot. Populated initially from extracted fields;
	// may be overwritten from canonical fields after verification. This
	// is the only place canonical data is allowed to overwrite a display
	// field, per spec §3.
	ClusterCaseName *string `json:"cluster_case_name"`
	ClusterYear     *int    `json:"cluster_year"`

	CanonicalName   *string            `json:"canonical_name"`
	CanonicalDate   *string            `json:"canonical_date"`
	CanonicalURL    *string            `json:"canonical_url"`
	VerificationSrc VerificationSource `json:"verification_source"`
}

// Valid reports whether the cluster satisfies the structural invariant
// that it has at least one member.
func (c *Cluster) Valid() bool {
	return len(c.MemberIndices) >= 1
}
