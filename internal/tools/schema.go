package tools

// Tool names. The set is closed; Call rejects anything else.
const (
	DiscoverSources = "discover_available_sources"
	QuerySource     = "query_data_source"
	AnalyzeTimeline = "analyze_shipment_timeline"
	ComputeCost     = "compute_cost_analysis"
	GenerateReport  = "generate_compliance_report"
)

// Tool describes one callable operation.
type Tool struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is a JSON-schema object describing a tool's arguments.
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property is one argument of a tool.
type Property struct {
	Type                 string `json:"type"`
	Description          string `json:"description"`
	AdditionalProperties bool   `json:"additionalProperties,omitempty"`
}

func object(required []string, props map[string]Property) Parameters {
	if props == nil {
		props = map[string]Property{}
	}
	if required == nil {
		required = []string{}
	}
	return Parameters{Type: "object", Properties: props, Required: required}
}

// catalogue is the capability table in listing order.
var catalogue = []Tool{
	{
		Name: DiscoverSources,
		Description: "Discover all tabular data sources under the data directory. " +
			"Returns each source's columns and a sample record. " +
			"Call this first to see what data is available for an investigation.",
		Parameters: object(nil, nil),
	},
	{
		Name: QuerySource,
		Description: "Query one data source with optional column filters. " +
			"A scalar filter value matches by equality and a list matches any member. " +
			"Returns the matching records in file order.",
		Parameters: object([]string{"source_name"}, map[string]Property{
			"source_name": {
				Type:        "string",
				Description: "Name of the source file (e.g. 'sensor_alerts', 'logistics_shipments')",
			},
			"filters": {
				Type:                 "object",
				Description:          "Optional column:value pairs, combined with AND",
				AdditionalProperties: true,
			},
			"limit": {
				Type:        "integer",
				Description: "Optional maximum number of records to return",
			},
		}),
	},
	{
		Name: AnalyzeTimeline,
		Description: "Build a chronological timeline for one shipment by joining events from every operational source. " +
			"Each event carries its timestamp, source and responsible party, followed by an accountability breakdown.",
		Parameters: object([]string{"shipment_id"}, map[string]Property{
			"shipment_id": {
				Type:        "string",
				Description: "Shipment identifier to investigate (e.g. 'SHP-001-1')",
			},
		}),
	},
	{
		Name: ComputeCost,
		Description: "Compare the cost of conditionally releasing a shipment against rejecting and reshipping it. " +
			"Uses the average historical quarantine loss as the expected waste of rejection.",
		Parameters: object([]string{"shipment_id"}, map[string]Property{
			"shipment_id": {
				Type:        "string",
				Description: "Shipment identifier to analyze",
			},
		}),
	},
	{
		Name:        GenerateReport,
		Description: "Package investigation findings into a draft CAPA report awaiting review and approval.",
		Parameters: object([]string{"shipment_id", "investigation_data"}, map[string]Property{
			"shipment_id": {
				Type:        "string",
				Description: "Shipment identifier",
			},
			"investigation_data": {
				Type:                 "object",
				Description:          "Findings: summary, timeline, root_causes, accountability, recommendations, corrective_actions, preventive_actions",
				AdditionalProperties: true,
			},
		}),
	},
}
