package cache

// Tag identifies a cache region, optionally narrowed to a subtype (a facet
// of the region embedded in a larger view) and a specific resource ID.
type Tag struct {
	Region  Region
	Subtype string
	ID      string
}

// String renders the canonical tag form "region[:subtype][#id]".
func (t Tag) String() string {
	s := string(t.Region)
	if t.Subtype != "" {
		s += ":" + t.Subtype
	}
	if t.ID != "" {
		s += "#" + t.ID
	}
	return s
}

// Matches reports whether an entry tagged with t should be invalidated by
// stale. A tag without subtype or ID covers every narrower tag of the same
// region.
func (t Tag) Matches(stale Tag) bool {
	if t.Region != stale.Region {
		return false
	}
	if stale.Subtype != "" && t.Subtype != stale.Subtype {
		return false
	}
	if stale.ID != "" && t.ID != stale.ID {
		return false
	}
	return true
}

// Mutation is a write operation against the backend that must invalidate
// parts of the cache.
type Mutation string

const (
	MutationProfileUpdate  Mutation = "profile-update"
	MutationHoursUpdate    Mutation = "hours-update"
	MutationServiceCreate  Mutation = "service-create"
	MutationServiceUpdate  Mutation = "service-update"
	MutationServiceDelete  Mutation = "service-delete"
	MutationZoneCreate     Mutation = "zone-create"
	MutationZoneUpdate     Mutation = "zone-update"
	MutationZoneDelete     Mutation = "zone-delete"
	MutationPhotoUpload    Mutation = "photo-upload"
	MutationPhotoDelete    Mutation = "photo-delete"
	MutationOrderStatusSet Mutation = "order-status-set"
	MutationReviewReply    Mutation = "review-reply"
)

// invalidations is the single source of truth mapping each mutation to the
// regions it staleness-propagates to. Several sub-resources are embedded in
// the profile view, so their mutations also invalidate the matching profile
// subtype. Order is significant only for readability; invalidation is a set
// operation.
var invalidations = map[Mutation][]Tag{
	MutationProfileUpdate: {
		{Region: RegionProfile},
		{Region: RegionStats},
	},
	MutationHoursUpdate: {
		{Region: RegionBusinessHours},
		{Region: RegionProfile, Subtype: "hours"},
	},
	MutationServiceCreate: {
		{Region: RegionServices},
		{Region: RegionProfile, Subtype: "services"},
	},
	MutationServiceUpdate: {
		{Region: RegionServices},
		{Region: RegionProfile, Subtype: "services"},
	},
	MutationServiceDelete: {
		{Region: RegionServices},
		{Region: RegionProfile, Subtype: "services"},
	},
	MutationZoneCreate: {
		{Region: RegionDeliveryZones},
		{Region: RegionProfile, Subtype: "deliveryZones"},
	},
	MutationZoneUpdate: {
		{Region: RegionDeliveryZones},
		{Region: RegionProfile, Subtype: "deliveryZones"},
	},
	MutationZoneDelete: {
		{Region: RegionDeliveryZones},
		{Region: RegionProfile, Subtype: "deliveryZones"},
	},
	MutationPhotoUpload: {
		{Region: RegionPhotos},
		{Region: RegionProfile, Subtype: "photos"},
	},
	MutationPhotoDelete: {
		{Region: RegionPhotos},
		{Region: RegionProfile, Subtype: "photos"},
	},
	MutationOrderStatusSet: {
		{Region: RegionOrders},
		{Region: RegionStats},
	},
	MutationReviewReply: {
		{Region: RegionReviews},
	},
}

// TagsFor returns the tags invalidated by the mutation. When id is non-empty
// the first (resource-specific) tag is narrowed to that resource, and the
// broad resource tag is kept so list views go stale too.
func TagsFor(m Mutation, id string) []Tag {
	base, ok := invalidations[m]
	if !ok {
		return nil
	}
	tags := make([]Tag, 0, len(base)+1)
	if id != "" {
		specific := base[0]
		specific.ID = id
		tags = append(tags, specific)
	}
	tags = append(tags, base...)
	return tags
}

// Mutations lists every mutation kind in the table, for structural tests.
func Mutations() []Mutation {
	out := make([]Mutation, 0, len(invalidations))
	for m := range invalidations {
		out = append(out, m)
	}
	return out
}
