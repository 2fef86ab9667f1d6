// Package errors is the error vocabulary shared by every layer of the
// character service.
//
// An *Error carries a Code, a user-facing Message, an optional Cause and
// free-form Meta. Repositories translate storage misses into NotFound,
// orchestrators reject bad input with InvalidArgument or the
// ValidationBuilder, and provider failures (LLM, image generation, CDN) are
// reported with External. The HTTP layer turns any error into a response with
// ToResponse, using Code.HTTPStatus for the status line.
//
// Creating errors:
//
//	err := errors.NotFoundf("character %s not found", id)
//	err := errors.InvalidArgument("damage amount must be positive")
//
// Wrapping keeps the code of the wrapped error:
//
//	if err := repo.Update(ctx, input); err != nil {
//	    return nil, errors.Wrap(err, "failed to save character")
//	}
//
// Checking:
//
//	if errors.IsNotFound(err) { ... }
package errors
