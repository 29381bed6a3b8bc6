// Package sla computes business-hours due dates for helpdesk tickets.
//
// Every calendar decision happens in one fixed-offset civil zone. A Calculator
// is built from a snapshot of operational hours and holidays, validates it up
// front and then answers pure questions: is an instant working time, when does
// working time resume, and where does a required amount of working time end.
package sla
