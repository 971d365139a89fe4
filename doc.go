// Package dwallet and its sub-packages implement the backend service of a decentralized wallet for Stellar networks.
/*
dwallet provides a wallet microservice (package wallet) that implements a RESTful API for user requests such as
creating keypairs, checking the balances of an account, sending payments, escrows and split payments, adding signers
and trustlines, creating offers, merging accounts and resolving federated addresses.

Architecture

The wallet holds no keys. Secret seeds are supplied per request, used to sign that request's transaction and
forgotten. Transactions are built, signed and submitted to Horizon by the ledger layer (package lib/block), a product
agnostic interface with a Stellar implementation. Every configured network (testnet, pubnet or any Horizon instance)
gets its own client and requests select one with the net query.

Plain payments are recorded in a transaction log (package lib/store) from which the transaction history and analytics
of an account are served. The log can be kept in MongoDB, PostgreSQL or memory.

Every transaction accepted by a ledger is announced as an event to a message broker (package lib/msg) so other
services can react to it. AMQP, Kafka and NATS are supported and events can be disabled.

The microservice can also be monitored via a Prometheus API by setting the flag "-m" at startup.

Wallet

The wallet microservice (package wallet) can be started running cmd/wallet/main.go. It is configured with a JSON file
(flag "-c") whose values can be overridden with environment variables, see package lib/config. A single page client
is served at /ui/.
*/
package dwallet
