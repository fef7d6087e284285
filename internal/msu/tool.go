// ABOUTME: Static descriptor of the query_transaction tool and its JSON input schema.
// ABOUTME: Parameter order here is the order clients see in tools/list.

package msu

import (
	"bytes"
	"encoding/json"
)

// QueryTransactionTool is the name of the only tool this server exposes.
const QueryTransactionTool = "query_transaction"

// Parameter describes one string argument of a tool.
type Parameter struct {
	Name        string
	Description string
	MaxLength   int // 0 means no declared limit
}

// Descriptor describes a tool: name, description and ordered parameters.
// None of the parameters are required and no others are accepted.
type Descriptor struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// QueryTransaction is the descriptor of query_transaction.
var QueryTransaction = Descriptor{
	Name: QueryTransactionTool,
	Description: "Query payment transaction details from MSU (MerchantSafe Unipay) payment gateway. " +
		"Returns transaction status, amount, payment method, timestamps, and customer information. " +
		"Can query by transaction ID, date range, or customer details. " +
		"Without specific identifiers, returns last 30 days of transactions.",
	Parameters: []Parameter{
		{Name: "pgtranid", Description: "Transaction ID given by payment gateway."},
		{Name: "start_date", Description: "Start date for transaction search in dd-MM-yyyy HH:mm format (max length: 16)", MaxLength: 16},
		{Name: "end_date", Description: "End date for transaction search in dd-MM-yyyy HH:mm format (max length: 16)", MaxLength: 16},
		{Name: "merchant_payment_id", Description: "Payment ID given by Merchant (must be unique, max length: 128). Recommended max 40 characters.", MaxLength: 128},
		{Name: "customer_name", Description: "Name of the Customer (max length: 128)", MaxLength: 128},
		{Name: "offset", Description: "Specifies the number from which transactions will start for pagination (max length: 10, default: '0')", MaxLength: 10},
		{Name: "limit", Description: "The maximum number of transactions in response (max length: 4, default: '1000')", MaxLength: 4},
		{Name: "customer", Description: "The Merchant System ID for customer. It must be unique within a Merchant (max length: 128)", MaxLength: 128},
		{Name: "customer_email", Description: "Customer e-mail (max length: 64)", MaxLength: 64},
		{Name: "customer_phone", Description: "Customer phone / mobile number (max length: 64)", MaxLength: 64},
		{Name: "transaction_status", Description: "Transaction status (max length: 18)", MaxLength: 18},
	},
}

// InputSchema renders the descriptor as a JSON Schema object.
func (d Descriptor) InputSchema() json.RawMessage {
	schema := struct {
		Type                 string     `json:"type"`
		Properties           properties `json:"properties"`
		Required             []string   `json:"required"`
		AdditionalProperties bool       `json:"additionalProperties"`
	}{
		Type:       "object",
		Properties: properties(d.Parameters),
		Required:   []string{},
	}
	data, err := json.Marshal(schema)
	if err != nil {
		panic("msu: marshal input schema: " + err.Error())
	}
	return data
}

// properties marshals parameters as a JSON object, keeping declaration order.
type properties []Parameter

type property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

func (p properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(param.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(property{Type: "string", Description: param.Description, MaxLength: param.MaxLength})
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
