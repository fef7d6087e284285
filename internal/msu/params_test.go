// ABOUTME: Tests for query_transaction argument decoding and wire mapping
// ABOUTME: Covers defaults, omission of empty fields, ordering, and rejected input

package msu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{Merchant: "m-1", User: "api-user", Password: "s3cret"}

func TestBuildQueryForm_OnlyTransactionID(t *testing.T) {
	form := BuildQueryForm(testCreds, QueryArgs{PGTranID: "TX123"})

	assert.Equal(t, Form{
		{FieldMerchant, "m-1"},
		{FieldMerchantUser, "api-user"},
		{FieldMerchantPassword, "s3cret"},
		{FieldAction, ActionQueryTransaction},
		{FieldPGTranID, "TX123"},
		{FieldLimit, DefaultLimit},
	}, form)
}

func TestBuildQueryForm_EmptyArgs(t *testing.T) {
	form := BuildQueryForm(testCreds, QueryArgs{})

	assert.Equal(t, []string{
		FieldMerchant, FieldMerchantUser, FieldMerchantPassword, FieldAction, FieldLimit,
	}, form.Keys())

	limit, ok := form.Get(FieldLimit)
	require.True(t, ok)
	assert.Equal(t, "1000", limit)
}

func TestBuildQueryForm_ExplicitLimit(t *testing.T) {
	form := BuildQueryForm(testCreds, QueryArgs{Limit: "50"})

	limit, ok := form.Get(FieldLimit)
	require.True(t, ok)
	assert.Equal(t, "50", limit)
}

func TestBuildQueryForm_AllFieldsInWireOrder(t *testing.T) {
	form := BuildQueryForm(testCreds, QueryArgs{
		PGTranID:          "TX1",
		StartDate:         "01-01-2024 00:00",
		EndDate:           "31-01-2024 23:59",
		MerchantPaymentID: "order-7",
		CustomerName:      "Ada Lovelace",
		Offset:            "20",
		Limit:             "10",
		Customer:          "cust-9",
		CustomerEmail:     "ada@example.com",
		CustomerPhone:     "+900000000",
		TransactionStatus: "AP",
	})

	assert.Equal(t, []string{
		FieldMerchant, FieldMerchantUser, FieldMerchantPassword, FieldAction,
		FieldPGTranID, FieldStartDate, FieldEndDate, FieldLimit,
		FieldMerchantPaymentID, FieldCustomer, FieldCustomerEmail, FieldCustomerName,
		FieldCustomerPhone, FieldTransactionStatus, FieldOffset,
	}, form.Keys())

	name, _ := form.Get(FieldCustomerName)
	assert.Equal(t, "Ada Lovelace", name)
	offset, _ := form.Get(FieldOffset)
	assert.Equal(t, "20", offset)
}

func TestBuildQueryForm_OverLengthPassesThrough(t *testing.T) {
	long := "12345678901234567890"
	form := BuildQueryForm(testCreds, QueryArgs{Limit: long, TransactionStatus: long})

	limit, _ := form.Get(FieldLimit)
	assert.Equal(t, long, limit)
	status, _ := form.Get(FieldTransactionStatus)
	assert.Equal(t, long, status)
}

func TestBuildQueryForm_FreshPerCall(t *testing.T) {
	first := BuildQueryForm(testCreds, QueryArgs{PGTranID: "A"})
	second := BuildQueryForm(testCreds, QueryArgs{Customer: "B"})

	_, ok := second.Get(FieldPGTranID)
	assert.False(t, ok)
	_, ok = first.Get(FieldCustomer)
	assert.False(t, ok)
}

func TestDecodeQueryArgs(t *testing.T) {
	t.Run("empty and null", func(t *testing.T) {
		for _, raw := range []string{"", "null", "  ", "{}"} {
			args, err := DecodeQueryArgs(json.RawMessage(raw))
			require.NoError(t, err, raw)
			assert.Equal(t, QueryArgs{}, args)
		}
	})

	t.Run("all names", func(t *testing.T) {
		raw := `{"pgtranid":"1","start_date":"2","end_date":"3","merchant_payment_id":"4",
			"customer_name":"5","offset":"6","limit":"7","customer":"8",
			"customer_email":"9","customer_phone":"10","transaction_status":"11"}`
		args, err := DecodeQueryArgs(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, QueryArgs{
			PGTranID: "1", StartDate: "2", EndDate: "3", MerchantPaymentID: "4",
			CustomerName: "5", Offset: "6", Limit: "7", Customer: "8",
			CustomerEmail: "9", CustomerPhone: "10", TransactionStatus: "11",
		}, args)
	})

	t.Run("null value is absent", func(t *testing.T) {
		args, err := DecodeQueryArgs(json.RawMessage(`{"limit":null}`))
		require.NoError(t, err)
		assert.Empty(t, args.Limit)
	})

	rejected := map[string]string{
		"unknown name":     `{"amount":"10"}`,
		"wrong case":       `{"PGTRANID":"TX1"}`,
		"number value":     `{"limit":50}`,
		"bool value":       `{"pgtranid":true}`,
		"not an object":    `["pgtranid"]`,
		"trailing data":    `{"pgtranid":"1"} {}`,
		"malformed object": `{"pgtranid":`,
	}
	for name, raw := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeQueryArgs(json.RawMessage(raw))
			assert.ErrorIs(t, err, ErrInvalidArguments)
		})
	}
}

func TestDescriptor_CoversEveryArgument(t *testing.T) {
	var args QueryArgs
	for _, p := range QueryTransaction.Parameters {
		assert.NotNil(t, args.field(p.Name), "descriptor parameter %q has no argument", p.Name)
	}
	assert.Len(t, QueryTransaction.Parameters, 11)
}
