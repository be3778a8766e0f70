package domain

// ResourceKind identifies one of the five dependent remote objects created
// by the provisioning pipeline.
type ResourceKind string

const (
	KindAsset    ResourceKind = "asset"
	KindCreative ResourceKind = "creative"
	KindCampaign ResourceKind = "campaign"
	KindAdGroup  ResourceKind = "ad_group"
	KindAd       ResourceKind = "ad"
)

// KindOrder is the fixed dependency order of the pipeline steps.
var KindOrder = []ResourceKind{KindAsset, KindCreative, KindCampaign, KindAdGroup, KindAd}

// ResourceRef is a single created remote object.
type ResourceRef struct {
	Kind ResourceKind `json:"kind"`
	ID   string       `json:"id"`
}

// ResourceChain is the ordered list of remote objects built by the pipeline.
// Entries only ever appear in KindOrder and a later kind is never present
// without all earlier kinds.
type ResourceChain []ResourceRef

// Append adds the next resource to the chain. The kind must be the next
// expected kind in KindOrder; anything else indicates a pipeline bug.
func (c ResourceChain) Append(kind ResourceKind, id string) ResourceChain {
	if kind != c.Next() {
		panic("resource chain: out of order append: " + string(kind))
	}
	return append(c, ResourceRef{Kind: kind, ID: id})
}

// Next returns the kind the pipeline must create next, or "" when the chain
// is complete.
func (c ResourceChain) Next() ResourceKind {
	if len(c) >= len(KindOrder) {
		return ""
	}
	return KindOrder[len(c)]
}

// Complete reports whether all five kinds are present.
func (c ResourceChain) Complete() bool {
	return len(c) == len(KindOrder)
}

// ID returns the id recorded for the given kind, or "" when absent.
func (c ResourceChain) ID(kind ResourceKind) string {
	for _, ref := range c {
		if ref.Kind == kind {
			return ref.ID
		}
	}
	return ""
}

// RemoteIDs is the persisted projection of a completed chain.
type RemoteIDs struct {
	AssetID    string `json:"asset_id"`
	CreativeID string `json:"creative_id"`
	CampaignID string `json:"campaign_id"`
	AdGroupID  string `json:"ad_group_id"`
	AdID       string `json:"ad_id"`
}

// IDs converts a complete chain into its persisted form.
func (c ResourceChain) IDs() RemoteIDs {
	return RemoteIDs{
		AssetID:    c.ID(KindAsset),
		CreativeID: c.ID(KindCreative),
		CampaignID: c.ID(KindCampaign),
		AdGroupID:  c.ID(KindAdGroup),
		AdID:       c.ID(KindAd),
	}
}
