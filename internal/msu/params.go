// ABOUTME: Arguments of the query_transaction tool and their mapping to MSU wire fields.
// ABOUTME: Applies the LIMIT default and drops empty optional fields.

package msu

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ActionQueryTransaction is the ACTION value for transaction queries.
const ActionQueryTransaction = "QUERYTRANSACTION"

// DefaultLimit is sent as LIMIT when the caller does not provide one.
const DefaultLimit = "1000"

// Wire field names.
const (
	FieldMerchant          = "MERCHANT"
	FieldMerchantUser      = "MERCHANTUSER"
	FieldMerchantPassword  = "MERCHANTPASSWORD"
	FieldAction            = "ACTION"
	FieldPGTranID          = "PGTRANID"
	FieldStartDate         = "STARTDATE"
	FieldEndDate           = "ENDDATE"
	FieldLimit             = "LIMIT"
	FieldMerchantPaymentID = "MERCHANTPAYMENTID"
	FieldCustomer          = "CUSTOMER"
	FieldCustomerEmail     = "CUSTOMEREMAIL"
	FieldCustomerName      = "CUSTOMERNAME"
	FieldCustomerPhone     = "CUSTOMERPHONE"
	FieldTransactionStatus = "TRANSACTIONSTATUS"
	FieldOffset            = "OFFSET"
)

// ErrInvalidArguments is returned when tool arguments cannot be decoded.
var ErrInvalidArguments = errors.New("invalid arguments")

// QueryArgs are the arguments of query_transaction. Every field is optional.
type QueryArgs struct {
	PGTranID          string `json:"pgtranid"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	MerchantPaymentID string `json:"merchant_payment_id"`
	CustomerName      string `json:"customer_name"`
	Offset            string `json:"offset"`
	Limit             string `json:"limit"`
	Customer          string `json:"customer"`
	CustomerEmail     string `json:"customer_email"`
	CustomerPhone     string `json:"customer_phone"`
	TransactionStatus string `json:"transaction_status"`
}

// DecodeQueryArgs decodes a JSON arguments object. Empty input and null
// yield zero QueryArgs. Names are matched exactly; unknown names and
// non-string values are rejected. A null value counts as absent.
func DecodeQueryArgs(raw json.RawMessage) (QueryArgs, error) {
	var args QueryArgs
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return args, nil
	}

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&fields); err != nil {
		return QueryArgs{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return QueryArgs{}, fmt.Errorf("%w: trailing data after arguments object", ErrInvalidArguments)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dst := args.field(name)
		if dst == nil {
			return QueryArgs{}, fmt.Errorf("%w: unknown argument %q", ErrInvalidArguments, name)
		}
		switch v := fields[name].(type) {
		case nil:
		case string:
			*dst = v
		default:
			return QueryArgs{}, fmt.Errorf("%w: argument %q must be a string", ErrInvalidArguments, name)
		}
	}
	return args, nil
}

func (a *QueryArgs) field(name string) *string {
	switch name {
	case "pgtranid":
		return &a.PGTranID
	case "start_date":
		return &a.StartDate
	case "end_date":
		return &a.EndDate
	case "merchant_payment_id":
		return &a.MerchantPaymentID
	case "customer_name":
		return &a.CustomerName
	case "offset":
		return &a.Offset
	case "limit":
		return &a.Limit
	case "customer":
		return &a.Customer
	case "customer_email":
		return &a.CustomerEmail
	case "customer_phone":
		return &a.CustomerPhone
	case "transaction_status":
		return &a.TransactionStatus
	}
	return nil
}

// BuildQueryForm maps args onto the QUERYTRANSACTION wire fields.
// Credentials and ACTION always come first, LIMIT is always present, and
// every other field appears only when its argument is non-empty.
// Lengths are not checked here; the schema's maxLength is advisory.
func BuildQueryForm(creds Credentials, args QueryArgs) Form {
	form := make(Form, 0, 16)
	form.Add(FieldMerchant, creds.Merchant)
	form.Add(FieldMerchantUser, creds.User)
	form.Add(FieldMerchantPassword, creds.Password)
	form.Add(FieldAction, ActionQueryTransaction)

	form.AddIfSet(FieldPGTranID, args.PGTranID)
	form.AddIfSet(FieldStartDate, args.StartDate)
	form.AddIfSet(FieldEndDate, args.EndDate)

	limit := args.Limit
	if limit == "" {
		limit = DefaultLimit
	}
	form.Add(FieldLimit, limit)

	form.AddIfSet(FieldMerchantPaymentID, args.MerchantPaymentID)
	form.AddIfSet(FieldCustomer, args.Customer)
	form.AddIfSet(FieldCustomerEmail, args.CustomerEmail)
	form.AddIfSet(FieldCustomerName, args.CustomerName)
	form.AddIfSet(FieldCustomerPhone, args.CustomerPhone)
	form.AddIfSet(FieldTransactionStatus, args.TransactionStatus)
	form.AddIfSet(FieldOffset, args.Offset)
	return form
}
