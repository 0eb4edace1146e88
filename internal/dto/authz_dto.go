package dto

// EvaluateRequest asks whether an actor may perform an action on a course.
// CourseID may be zero for actor-only actions (create/delete gates).
type EvaluateRequest struct {
	Action   string `json:"action" validate:"required"`
	ActorID  uint   `json:"actor_id" validate:"required"`
	CourseID uint   `json:"course_id"`
}

// EvaluateResponse carries the authorization decision for one action.
type EvaluateResponse struct {
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}
