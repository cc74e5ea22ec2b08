package domain

import (
	"time"
)

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationFailure NotificationKind = "failure"
)

// Notification is the user-visible outcome of a transaction.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Operation string           `json:"operation"`
	Message   string           `json:"message"`
	TxHash    string           `json:"txHash,omitempty"`
	At        time.Time        `json:"at"`
}

type EventKind string

const (
	EventUserRegistered      EventKind = "user.registered"
	EventUserUpdated         EventKind = "user.updated"
	EventUserDeactivated     EventKind = "user.deactivated"
	EventUserReactivated     EventKind = "user.reactivated"
	EventCourierRegistered   EventKind = "courier.registered"
	EventCourierUpdated      EventKind = "courier.updated"
	EventCourierDeactivated  EventKind = "courier.deactivated"
	EventOrderCreated        EventKind = "order.created"
	EventOrderConfirmed      EventKind = "order.confirmed"
	EventContractInitialized EventKind = "contract.initialized"
)

// Event is a confirmed write that other stores may want to react to.
type Event struct {
	Kind    EventKind `json:"kind"`
	Subject string    `json:"subject,omitempty"`
	TxHash  string    `json:"txHash,omitempty"`
	Origin  string    `json:"origin,omitempty"`
	At      time.Time `json:"at"`
}

type SubmissionStatus string

const (
	SubmissionStarted   SubmissionStatus = "started"
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionRejected  SubmissionStatus = "rejected"
)

// Submission is one journal entry for a signed transaction.
type Submission struct {
	ID        string           `json:"id"`
	Operation string           `json:"operation"`
	Function  string           `json:"function"`
	Arguments []any            `json:"arguments"`
	Status    SubmissionStatus `json:"status"`
	TxHash    string           `json:"txHash,omitempty"`
	Error     string           `json:"error,omitempty"`
	At        time.Time        `json:"at"`
}
