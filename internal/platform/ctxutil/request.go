package ctxutil

import "context"

type requestDataKey struct{}

// RequestData identifies one inbound request for logs and downstream events.
type RequestData struct {
	TraceID   string
	RequestID string
	// UserID is the :user_id route parameter once a handler has parsed it.
	UserID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
