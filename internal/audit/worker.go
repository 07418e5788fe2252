package audit

import "context"

// Worker drains the audit inbox into a sink. Emitters stay fast and the slow
// sink (Kafka, Postgres) runs off the request path.
type Worker struct {
	sink  Publisher
	inbox <-chan Event
}

func NewWorker(sink Publisher, inbox <-chan Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Emit(ctx, event); err != nil {
				return err
			}
		}
	}
}
