package lookup

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/cso-health-insurance/server/internal/agent/model"
)

// Tool names, as exposed to the operator lookup console.
const (
	ToolCustomer  = "lookup_nasabah"
	ToolHospitals = "lookup_rs"
	ToolEvidence  = "rag_polis"
)

const defaultEvidenceK = 30

type CustomerToolInput struct {
	PolicyNumber string `json:"policy_number"`
}

type CustomerToolOutput struct {
	Found   bool                     `json:"found"`
	Outcome string                   `json:"outcome"`
	Record  model.Record             `json:"record,omitempty"`
	Lookup  model.CustomerLookupInfo `json:"lookup"`
}

type HospitalToolInput struct {
	City   string `json:"city"`
	RSMode string `json:"rs_mode,omitempty"`
}

type HospitalToolOutput struct {
	Outcome   string         `json:"outcome"`
	Hospitals []model.Record `json:"hospitals"`
	Total     int            `json:"total"`
}

type EvidenceToolInput struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type EvidenceToolOutput struct {
	Outcome string                `json:"outcome"`
	Chunks  []model.EvidenceChunk `json:"chunks"`
}

// Tools exposes the adapters as eino tools so they can be run through a ToolsNode.
func (s *Service) Tools() []tool.BaseTool {
	return []tool.BaseTool{
		s.customerTool(),
		s.hospitalTool(),
		s.evidenceTool(),
	}
}

func (s *Service) customerTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCustomer,
			Desc: "Look up a customer record by policy number. Tries formatting variants before a semantic fallback.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"policy_number": {
					Type:     "string",
					Desc:     "Policy number as typed by the customer, e.g. POL-002-2024.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *CustomerToolInput) (*CustomerToolOutput, error) {
			if in.PolicyNumber == "" {
				return nil, fmt.Errorf("policy_number is required")
			}
			res := s.LookupCustomerRecord(ctx, in.PolicyNumber)
			return &CustomerToolOutput{
				Found:   res.Info.Found,
				Outcome: res.Outcome.String(),
				Record:  res.Record,
				Lookup:  res.Info,
			}, nil
		},
	)
}

func (s *Service) hospitalTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolHospitals,
			Desc: "List partner hospitals in a city, optionally only cashless or only reimbursement ones.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"city": {
					Type:     "string",
					Desc:     "City name, e.g. Bandung.",
					Required: true,
				},
				"rs_mode": {
					Type: "string",
					Desc: "cashless, non_cashless or all (default all)",
					Enum: []string{string(model.RSModeCashless), string(model.RSModeNonCashless), string(model.RSModeAll)},
				},
			}),
		},
		func(ctx context.Context, in *HospitalToolInput) (*HospitalToolOutput, error) {
			if in.City == "" {
				return nil, fmt.Errorf("city is required")
			}
			mode := model.RSMode(in.RSMode)
			if mode == "" {
				mode = model.RSModeAll
			}
			res := s.LookupPartnerHospitals(ctx, in.City, mode)
			return &HospitalToolOutput{
				Outcome:   res.Outcome.String(),
				Hospitals: res.Records,
				Total:     len(res.Records),
			}, nil
		},
	)
}

func (s *Service) evidenceTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolEvidence,
			Desc: "Semantic search over the policy document. Returns text chunks with source and page.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Search text.",
					Required: true,
				},
				"k": {
					Type: "number",
					Desc: "Maximum number of chunks (default: 30)",
				},
			}),
		},
		func(ctx context.Context, in *EvidenceToolInput) (*EvidenceToolOutput, error) {
			if in.Query == "" {
				return nil, fmt.Errorf("query is required")
			}
			if in.K <= 0 {
				in.K = defaultEvidenceK
			}
			res := s.RetrieveDocumentEvidence(ctx, in.Query, in.K)
			return &EvidenceToolOutput{Outcome: res.Outcome.String(), Chunks: res.Chunks}, nil
		},
	)
}
