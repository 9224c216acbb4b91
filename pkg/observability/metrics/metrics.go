package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	formsRendered         atomic.Int64
	enumFallbacks         atomic.Int64
	recordsAssembled      atomic.Int64
	documentsSigned       atomic.Int64
	accessEventsPublished atomic.Int64
	accessEventsConsumed  atomic.Int64
)

func FormRendered()         { formsRendered.Add(1) }
func EnumFallback()         { enumFallbacks.Add(1) }
func RecordAssembled()      { recordsAssembled.Add(1) }
func DocumentSigned()       { documentsSigned.Add(1) }
func AccessEventPublished() { accessEventsPublished.Add(1) }
func AccessEventConsumed()  { accessEventsConsumed.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP recordforms_forms_rendered_total Number of HTML forms rendered.\n")
	fmt.Fprintf(w, "# TYPE recordforms_forms_rendered_total counter\n")
	fmt.Fprintf(w, "recordforms_forms_rendered_total %d\n", formsRendered.Load())

	fmt.Fprintf(w, "# HELP recordforms_enum_fallbacks_total Number of enum columns that fell back to a text input.\n")
	fmt.Fprintf(w, "# TYPE recordforms_enum_fallbacks_total counter\n")
	fmt.Fprintf(w, "recordforms_enum_fallbacks_total %d\n", enumFallbacks.Load())

	fmt.Fprintf(w, "# HELP recordforms_records_assembled_total Number of composite patient records assembled.\n")
	fmt.Fprintf(w, "# TYPE recordforms_records_assembled_total counter\n")
	fmt.Fprintf(w, "recordforms_records_assembled_total %d\n", recordsAssembled.Load())

	fmt.Fprintf(w, "# HELP recordforms_documents_signed_total Number of document access URLs regenerated.\n")
	fmt.Fprintf(w, "# TYPE recordforms_documents_signed_total counter\n")
	fmt.Fprintf(w, "recordforms_documents_signed_total %d\n", documentsSigned.Load())

	fmt.Fprintf(w, "# HELP recordforms_access_events_published_total Number of record access audit events published.\n")
	fmt.Fprintf(w, "# TYPE recordforms_access_events_published_total counter\n")
	fmt.Fprintf(w, "recordforms_access_events_published_total %d\n", accessEventsPublished.Load())

	fmt.Fprintf(w, "# HELP recordforms_access_events_consumed_total Number of record access audit events written to the audit log.\n")
	fmt.Fprintf(w, "# TYPE recordforms_access_events_consumed_total counter\n")
	fmt.Fprintf(w, "recordforms_access_events_consumed_total %d\n", accessEventsConsumed.Load())
}
