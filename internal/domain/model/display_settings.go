package model

import "time"

type DisplaySettings struct {
	EventID         string
	AutoRotate      bool
	SlideInterval   int
	Transition      string
	ShowCaptions    bool
	ShowSubmitter   bool
	BackgroundColor string
	UpdatedAt       time.Time
}

// DisplaySettingsPatch carries a partial update; nil fields are left unchanged.
type DisplaySettingsPatch struct {
	AutoRotate      *bool
	SlideInterval   *int
	Transition      *string
	ShowCaptions    *bool
	ShowSubmitter   *bool
	BackgroundColor *string
}

func (p DisplaySettingsPatch) Apply(s DisplaySettings) DisplaySettings {
	if p.AutoRotate != nil {
		s.AutoRotate = *p.AutoRotate
	}
	if p.SlideInterval != nil {
		s.SlideInterval = *p.SlideInterval
	}
	if p.Transition != nil {
		s.Transition = *p.Transition
	}
	if p.ShowCaptions != nil {
		s.ShowCaptions = *p.ShowCaptions
	}
	if p.ShowSubmitter != nil {
		s.ShowSubmitter = *p.ShowSubmitter
	}
	if p.BackgroundColor != nil {
		s.BackgroundColor = *p.BackgroundColor
	}
	return s
}

func (p DisplaySettingsPatch) IsEmpty() bool {
	return p.AutoRotate == nil && p.SlideInterval == nil && p.Transition == nil &&
		p.ShowCaptions == nil && p.ShowSubmitter == nil && p.BackgroundColor == nil
}
