// Package analysis expands a free-text development objective into a
// typed, deduplicated requirement set through four passes: keyword
// pattern matching, dependency expansion, context implication, and
// validation gap-fill.
package analysis

import "github.com/snowhive/snowhive/pkg/models"

// keywordGroup maps a set of trigger keywords to one requirement.
// A group contributes at most one requirement per run.
type keywordGroup struct {
	// Keywords are matched case-insensitively as substrings.
	Keywords []string
	Type     models.RequirementType
	Name     string
	Desc     string
	Priority models.Priority
}

// keywordTable is the ordered pass-1 pattern table. Order matters:
// earlier groups claim their requirement first, and requirement ids are
// assigned in table order, so the table must stay append-only.
var keywordTable = []keywordGroup{
	{
		Keywords: []string{"approval workflow", "workflow", "flow", "process automation"},
		Type:     models.RequirementFlow,
		Name:     "Primary Flow",
		Desc:     "Automated flow implementing the requested process",
		Priority: models.PriorityCritical,
	},
	{
		Keywords: []string{"approval", "approve", "sign-off", "sign off"},
		Type:     models.RequirementApprovalRule,
		Name:     "Approval Rule",
		Desc:     "Approval rule governing who signs off and when",
		Priority: models.PriorityHigh,
	},
	{
		Keywords: []string{"widget", "portal component", "ui component"},
		Type:     models.RequirementWidget,
		Name:     "Portal Widget",
		Desc:     "Service portal widget for the requested interface",
		Priority: models.PriorityHigh,
	},
	{
		Keywords: []string{"portal", "self-service", "self service"},
		Type:     models.RequirementPortal,
		Name:     "Service Portal",
		Desc:     "Portal surface exposing the capability to end users",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"table", "data model", "database", "records", "store data"},
		Type:     models.RequirementTable,
		Name:     "Data Table",
		Desc:     "Table holding the records the objective works with",
		Priority: models.PriorityCritical,
	},
	{
		Keywords: []string{"form", "fields", "field layout"},
		Type:     models.RequirementField,
		Name:     "Form Fields",
		Desc:     "Field definitions and form layout",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"business rule", "validation", "validate", "enforce"},
		Type:     models.RequirementBusinessRule,
		Name:     "Business Rule",
		Desc:     "Server-side rule enforcing the requested behavior",
		Priority: models.PriorityHigh,
	},
	{
		Keywords: []string{"script include", "reusable script", "server script"},
		Type:     models.RequirementScriptInclude,
		Name:     "Script Include",
		Desc:     "Reusable server-side script logic",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"client script", "on change", "onchange", "form behavior"},
		Type:     models.RequirementClientScript,
		Name:     "Client Script",
		Desc:     "Client-side form behavior",
		Priority: models.PriorityLow,
	},
	{
		Keywords: []string{"notification", "notify", "alert", "email"},
		Type:     models.RequirementNotification,
		Name:     "Notification",
		Desc:     "Notification informing stakeholders of state changes",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"report", "reporting"},
		Type:     models.RequirementReport,
		Name:     "Report",
		Desc:     "Report over the objective's records",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"dashboard", "kpi", "metrics", "analytics"},
		Type:     models.RequirementDashboard,
		Name:     "Dashboard",
		Desc:     "Dashboard visualizing the objective's key metrics",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"integration", "integrate", "third-party", "external system", "sync with"},
		Type:     models.RequirementIntegration,
		Name:     "External Integration",
		Desc:     "Integration with the named external system",
		Priority: models.PriorityHigh,
	},
	{
		Keywords: []string{"rest api", "rest endpoint", "api endpoint", "web service"},
		Type:     models.RequirementRESTAPI,
		Name:     "REST API",
		Desc:     "REST interface exposing or consuming the capability",
		Priority: models.PriorityHigh,
	},
	{
		Keywords: []string{"webhook", "callback url"},
		Type:     models.RequirementWebhook,
		Name:     "Webhook",
		Desc:     "Outbound webhook fired on the relevant events",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"catalog item", "catalog request", "request item", "catalog"},
		Type:     models.RequirementCatalogItem,
		Name:     "Catalog Item",
		Desc:     "Catalog item through which users request the capability",
		Priority: models.PriorityHigh,
	},
	{
		Keywords: []string{"record producer", "intake form"},
		Type:     models.RequirementRecordProducer,
		Name:     "Record Producer",
		Desc:     "Record producer creating records from user input",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"role", "roles", "permission", "who can", "access control"},
		Type:     models.RequirementUserRole,
		Name:     "User Role",
		Desc:     "Role gating access to the new capability",
		Priority: models.PriorityHigh,
	},
	{
		Keywords: []string{"import", "data load", "migrate data", "bulk load"},
		Type:     models.RequirementImportSet,
		Name:     "Import Set",
		Desc:     "Import set bringing external data into the platform",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"schedule", "scheduled", "nightly", "periodic", "cron"},
		Type:     models.RequirementScheduledJob,
		Name:     "Scheduled Job",
		Desc:     "Scheduled job running the recurring work",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"sla", "service level", "due date", "deadline"},
		Type:     models.RequirementSLADefinition,
		Name:     "SLA Definition",
		Desc:     "SLA tracking timeliness of the process",
		Priority: models.PriorityMedium,
	},
	{
		Keywords: []string{"survey", "feedback", "satisfaction"},
		Type:     models.RequirementSurvey,
		Name:     "Survey",
		Desc:     "Survey collecting feedback after completion",
		Priority: models.PriorityLow,
	},
	{
		Keywords: []string{"knowledge", "kb article", "how-to"},
		Type:     models.RequirementKnowledgeBase,
		Name:     "Knowledge Article",
		Desc:     "Knowledge content documenting the capability for users",
		Priority: models.PriorityLow,
	},
}

// contextGroup is a pass-3 implication rule: when any trigger keyword
// appears in the objective, the listed requirement types are injected
// unless their type is already present.
type contextGroup struct {
	Name     string
	Keywords []string
	Implies  []models.RequirementType
}

// contextGroups are the fixed pass-3 implication rules. Scope and
// compliance sub-checks hang off these groups; see Analyzer.ContextHooks.
var contextGroups = []contextGroup{
	{
		Name:     "security",
		Keywords: []string{"secure", "security", "authentication", "authorization", "sensitive", "confidential"},
		Implies: []models.RequirementType{
			models.RequirementACL,
			models.RequirementSecurityPolicy,
			models.RequirementUserRole,
		},
	},
	{
		Name:     "data-integration",
		Keywords: []string{"integration", "sync", "import", "export", "external data", "api"},
		Implies: []models.RequirementType{
			models.RequirementIntegration,
			models.RequirementTransformMap,
		},
	},
	{
		Name:     "user-experience",
		Keywords: []string{"portal", "user friendly", "user-friendly", "self-service", "mobile", "intuitive"},
		Implies: []models.RequirementType{
			models.RequirementWidget,
			models.RequirementPage,
			models.RequirementPortalTheme,
		},
	},
	{
		Name:     "process-automation",
		Keywords: []string{"automate", "automatic", "automatically", "workflow", "trigger", "orchestrate"},
		Implies: []models.RequirementType{
			models.RequirementFlow,
			models.RequirementScheduledJob,
			models.RequirementBusinessRule,
		},
	},
	{
		Name:     "compliance",
		Keywords: []string{"compliance", "gdpr", "sox", "hipaa", "retention", "regulatory", "audit"},
		Implies: []models.RequirementType{
			models.RequirementDataPolicy,
			models.RequirementAuditRule,
			models.RequirementDocumentation,
		},
	},
}

// typeDefaults supplies effort, risk, and coverage metadata for
// requirements created outside pass 1 (passes 2-4 only know the type).
type typeMeta struct {
	Effort      models.Effort
	Risk        models.RiskLevel
	Priority    models.Priority
	Name        string
	Automatable bool
	// Covered marks types with built-in generator support.
	Covered bool
}

var typeDefaults = map[models.RequirementType]typeMeta{
	models.RequirementFlow:            {models.EffortHigh, models.RiskMedium, models.PriorityCritical, "Primary Flow", true, true},
	models.RequirementSubflow:         {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "Subflow", true, true},
	models.RequirementWidget:          {models.EffortHigh, models.RiskMedium, models.PriorityHigh, "Portal Widget", true, true},
	models.RequirementPage:            {models.EffortMedium, models.RiskLow, models.PriorityMedium, "Portal Page", true, true},
	models.RequirementPortal:          {models.EffortHigh, models.RiskMedium, models.PriorityMedium, "Service Portal", false, false},
	models.RequirementTable:           {models.EffortMedium, models.RiskLow, models.PriorityCritical, "Data Table", true, true},
	models.RequirementField:           {models.EffortLow, models.RiskLow, models.PriorityMedium, "Form Fields", true, true},
	models.RequirementRelationship:    {models.EffortLow, models.RiskLow, models.PriorityLow, "Table Relationship", true, true},
	models.RequirementBusinessRule:    {models.EffortMedium, models.RiskMedium, models.PriorityHigh, "Business Rule", true, true},
	models.RequirementClientScript:    {models.EffortLow, models.RiskLow, models.PriorityLow, "Client Script", true, true},
	models.RequirementScriptInclude:   {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "Script Include", true, true},
	models.RequirementUIPolicy:        {models.EffortLow, models.RiskLow, models.PriorityLow, "UI Policy", true, true},
	models.RequirementUIAction:        {models.EffortLow, models.RiskLow, models.PriorityLow, "UI Action", true, true},
	models.RequirementACL:             {models.EffortMedium, models.RiskHigh, models.PriorityHigh, "Access Control", false, false},
	models.RequirementUserRole:        {models.EffortLow, models.RiskMedium, models.PriorityHigh, "User Role", true, true},
	models.RequirementGroup:           {models.EffortLow, models.RiskLow, models.PriorityMedium, "Assignment Group", true, true},
	models.RequirementNotification:    {models.EffortLow, models.RiskLow, models.PriorityMedium, "Notification", true, true},
	models.RequirementEmailTemplate:   {models.EffortLow, models.RiskLow, models.PriorityLow, "Email Template", true, true},
	models.RequirementReport:          {models.EffortMedium, models.RiskLow, models.PriorityMedium, "Report", true, true},
	models.RequirementDashboard:       {models.EffortMedium, models.RiskLow, models.PriorityMedium, "Dashboard", true, true},
	models.RequirementKPI:             {models.EffortLow, models.RiskLow, models.PriorityLow, "KPI", true, false},
	models.RequirementScheduledJob:    {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "Scheduled Job", true, true},
	models.RequirementImportSet:       {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "Import Set", true, false},
	models.RequirementTransformMap:    {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "Transform Map", true, false},
	models.RequirementIntegration:     {models.EffortHigh, models.RiskHigh, models.PriorityHigh, "External Integration", false, false},
	models.RequirementRESTAPI:         {models.EffortHigh, models.RiskHigh, models.PriorityHigh, "REST API", true, false},
	models.RequirementAPIEndpoint:     {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "API Endpoint", true, false},
	models.RequirementWebhook:         {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "Webhook", true, false},
	models.RequirementApprovalRule:    {models.EffortMedium, models.RiskMedium, models.PriorityHigh, "Approval Rule", true, true},
	models.RequirementEscalationRule:  {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "Escalation Rule", true, true},
	models.RequirementSLADefinition:   {models.EffortMedium, models.RiskMedium, models.PriorityMedium, "SLA Definition", true, true},
	models.RequirementCatalogItem:     {models.EffortMedium, models.RiskLow, models.PriorityHigh, "Catalog Item", true, true},
	models.RequirementCatalogCategory: {models.EffortLow, models.RiskLow, models.PriorityLow, "Catalog Category", true, true},
	models.RequirementRecordProducer:  {models.EffortMedium, models.RiskLow, models.PriorityMedium, "Record Producer", true, true},
	models.RequirementKnowledgeBase:   {models.EffortLow, models.RiskLow, models.PriorityLow, "Knowledge Article", true, false},
	models.RequirementSurvey:          {models.EffortLow, models.RiskLow, models.PriorityLow, "Survey", true, false},
	models.RequirementPortalTheme:     {models.EffortMedium, models.RiskLow, models.PriorityLow, "Portal Theme", false, false},
	models.RequirementAuditRule:       {models.EffortMedium, models.RiskHigh, models.PriorityHigh, "Audit Rule", false, false},
	models.RequirementDataPolicy:      {models.EffortMedium, models.RiskHigh, models.PriorityHigh, "Data Policy", false, false},
	models.RequirementSecurityPolicy:  {models.EffortHigh, models.RiskHigh, models.PriorityHigh, "Security Policy", false, false},
	models.RequirementTestCase:        {models.EffortMedium, models.RiskLow, models.PriorityMedium, "Test Coverage", true, false},
	models.RequirementDocumentation:   {models.EffortLow, models.RiskLow, models.PriorityLow, "Documentation", true, false},
}

// metaFor returns the metadata for a type, with a safe fallback for
// anything missing from the table.
func metaFor(t models.RequirementType) typeMeta {
	if m, ok := typeDefaults[t]; ok {
		return m
	}
	return typeMeta{
		Effort:   models.EffortMedium,
		Risk:     models.RiskMedium,
		Priority: models.PriorityMedium,
		Name:     string(t),
	}
}
