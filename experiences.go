package main

import "context"

type ExperienceInput struct {
	Title       *string `json:"title"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	From        *string `json:"from"`
	To          *string `json:"to"`
	Current     *bool   `json:"current"`
	Description *string `json:"description"`
}

func (in ExperienceInput) apply(e *Experience) map[string]any {
	ch := map[string]any{}
	setText(&e.Title, in.Title, "title", ch)
	setText(&e.Company, in.Company, "company", ch)
	setText(&e.Location, in.Location, "location", ch)
	setText(&e.From, in.From, "start_label", ch)
	setText(&e.To, in.To, "end_label", ch)
	setValue(&e.Current, in.Current, "current", ch)
	setText(&e.Description, in.Description, "description", ch)
	return ch
}

func validateExperience(e *Experience) error {
	var errs FieldErrors
	errs.required("title", e.Title)
	errs.required("company", e.Company)
	errs.required("from", e.From)
	errs.required("to", e.To)
	errs.required("description", e.Description)
	return errs.orNil()
}

type ExperienceService struct {
	catalog[Experience]
}

func NewExperienceService(repo Repository[Experience], lc *listCache) *ExperienceService {
	return &ExperienceService{catalog[Experience]{
		resource: "Experience",
		key:      colExperiences,
		repo:     repo,
		policy:   adminOnly,
		sort:     []Sort{{Field: "created_at", Desc: true}},
		cache:    lc,
		ownerOf:  func(e *Experience) string { return e.OwnerID },
	}}
}

func (s *ExperienceService) Create(ctx context.Context, who Identity, in ExperienceInput) (*Experience, error) {
	var e Experience
	in.apply(&e)
	if err := validateExperience(&e); err != nil {
		return nil, err
	}
	e.Base = newBase()
	e.OwnerID = who.AccountID
	if err := s.insert(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *ExperienceService) Update(ctx context.Context, who Identity, id string, in ExperienceInput) (*Experience, error) {
	cur, err := s.authorize(ctx, who, id, "update")
	if err != nil {
		return nil, err
	}
	next := *cur
	fields := in.apply(&next)
	if err := validateExperience(&next); err != nil {
		return nil, err
	}
	return s.patch(ctx, id, fields)
}
