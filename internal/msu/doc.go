// Package msu talks to the MerchantSafe Unipay (MSU) payment gateway.
//
// # Overview
//
// The gateway exposes a single form-encoded endpoint. Every request carries
// the merchant credentials and an ACTION field; the rest of the fields depend
// on the action. This package only implements QUERYTRANSACTION.
//
// # Components
//
//   - Credentials: merchant id, user and password. Redacted when printed or logged.
//   - QueryArgs: the tool-facing arguments of query_transaction.
//   - BuildQueryForm: maps QueryArgs onto the ordered wire fields.
//   - Client: posts a Form and decodes the JSON reply.
//
// # Errors
//
// Client.Query separates three failure classes:
//
//   - ErrTransport: the request never completed (DNS, refused connection, TLS, timeout).
//   - *APIError: the gateway answered with a non-2xx status. Body holds the raw text.
//   - ErrInvalidResponse: a 2xx reply that is not a single JSON value.
//
// Business-level failures reported inside a 2xx JSON body are not errors here.
//
// # Usage
//
//	client, err := msu.NewClient(msu.ClientConfig{BaseURL: msu.DefaultBaseURL})
//	form := msu.BuildQueryForm(creds, msu.QueryArgs{PGTranID: "TX123"})
//	body, err := client.Query(ctx, form)
package msu
