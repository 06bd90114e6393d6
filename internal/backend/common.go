package backend

import (
	"fmt"

	"github.com/paarijaat/stickyapp/internal/domain"
)

func ok(format string, args ...any) domain.ActionResponse {
	return domain.ActionResponse{Status: true, StatusMessage: fmt.Sprintf(format, args...)}
}

func failed(format string, args ...any) domain.ActionResponse {
	return domain.ActionResponse{StatusMessage: fmt.Sprintf(format, args...)}
}

func shutdown() domain.Result {
	return domain.Result{Response: ok("shutdown action received"), Terminates: true}
}

func noData() domain.Result {
	return domain.Result{Response: ok("mean action, no data")}
}

func unknown(req domain.ActionRequest) error {
	return fmt.Errorf("%w %q", domain.ErrUnknownAction, req.Action)
}
