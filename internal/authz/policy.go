package authz

import (
	"juba-homez/internal/models"
)

// Action names one guarded operation.
type Action string

const (
	ProfileUpdate Action = "profile.update"
	Notifications Action = "notifications"

	PropertyCreate    Action = "property.create"
	PropertyUpdate    Action = "property.update"
	PropertyStatus    Action = "property.status"
	PropertyDelete    Action = "property.delete"
	PropertyAnalytics Action = "property.analytics"
	MyAnalytics       Action = "analytics.mine"

	MediaUpload Action = "media.upload"
	MediaDelete Action = "media.delete"

	InquiryList  Action = "inquiry.list"
	InquiryRead  Action = "inquiry.read"
	InquiryReply Action = "inquiry.reply"

	ViewingRequestList Action = "viewing.request.list"
	ViewingSchedule    Action = "viewing.schedule"
	ViewingList        Action = "viewing.list"
	ViewingManage      Action = "viewing.manage"

	PhotoJobCreate  Action = "photojob.create"
	PhotoJobBrowse  Action = "photojob.browse"
	PhotoJobList    Action = "photojob.list"
	PhotoJobAccept  Action = "photojob.accept"
	PhotoJobAdvance Action = "photojob.advance"
	PhotoJobMessage Action = "photojob.message"

	ModerationRead Action = "moderation.read"
	Moderate       Action = "moderation.transition"
	AuditRead      Action = "audit.read"
	Announce       Action = "announcement.create"
)

// Rule says who may perform an action and whether ownership of a resource is also required.
type Rule struct {
	Roles  []string
	Scoped bool
}

var (
	allRoles = []string{
		models.RoleCustomer, models.RoleBroker, models.RoleOwner,
		models.RolePhotographer, models.RoleAdmin, models.RoleStaff,
	}
	listers    = []string{models.RoleBroker, models.RoleOwner, models.RoleAdmin}
	jobParties = []string{models.RoleBroker, models.RoleOwner, models.RolePhotographer, models.RoleAdmin}
	adminOnly  = []string{models.RoleAdmin}
	shooters   = []string{models.RolePhotographer, models.RoleAdmin}
)

var policy = map[Action]Rule{
	ProfileUpdate: {Roles: allRoles},
	Notifications: {Roles: allRoles},

	PropertyCreate:    {Roles: listers},
	PropertyUpdate:    {Roles: listers, Scoped: true},
	PropertyStatus:    {Roles: listers, Scoped: true},
	PropertyDelete:    {Roles: listers, Scoped: true},
	PropertyAnalytics: {Roles: listers, Scoped: true},
	MyAnalytics:       {Roles: listers},

	MediaUpload: {Roles: jobParties, Scoped: true},
	MediaDelete: {Roles: listers, Scoped: true},

	InquiryList:  {Roles: listers},
	InquiryRead:  {Roles: listers, Scoped: true},
	InquiryReply: {Roles: listers, Scoped: true},

	ViewingRequestList: {Roles: listers},
	ViewingSchedule:    {Roles: listers, Scoped: true},
	ViewingList:        {Roles: jobParties},
	ViewingManage:      {Roles: listers, Scoped: true},

	PhotoJobCreate:  {Roles: listers, Scoped: true},
	PhotoJobBrowse:  {Roles: shooters},
	PhotoJobList:    {Roles: jobParties},
	PhotoJobAccept:  {Roles: shooters},
	PhotoJobAdvance: {Roles: shooters, Scoped: true},
	PhotoJobMessage: {Roles: jobParties, Scoped: true},

	ModerationRead: {Roles: adminOnly},
	Moderate:       {Roles: adminOnly},
	AuditRead:      {Roles: adminOnly},
	Announce:       {Roles: adminOnly},
}

// RuleFor returns the rule for an action.
func RuleFor(a Action) (Rule, bool) {
	r, ok := policy[a]
	return r, ok
}

// Check evaluates an action for an identity. Unknown actions are denied.
// Scoped actions need the resource; passing nil for one is treated as not found.
func Check(id *Identity, a Action, res *Resource) Decision {
	rule, ok := policy[a]
	if !ok {
		if id == nil {
			return deny(ReasonUnauthenticated)
		}
		return deny(ReasonInsufficientRole)
	}
	if !rule.Scoped {
		return Authorize(id, rule.Roles, nil)
	}
	if res == nil {
		res = &Resource{}
	}
	return Authorize(id, rule.Roles, res)
}
