package handler

import (
	"errors"

	"github.com/clinicreserve/reservation-system/internal/api/metrics"
	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// observeLedger counts one ledger operation by outcome.
func observeLedger(op string, err error) {
	metrics.AppointmentOpsTotal.WithLabelValues(op, ledgerResult(err)).Inc()
}

func ledgerResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, domain.ErrAppointmentNotFound), errors.Is(err, domain.ErrClinicNotFound):
		return "not_found"
	}
	return "error"
}

func observeLogin(err error) {
	result := "ok"
	if err != nil {
		result = "invalid"
	}
	metrics.LoginsTotal.WithLabelValues(result).Inc()
}
