package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedbackValidate(t *testing.T) {
	comment := strings.Repeat("c", FeedbackCommentMaxLen)
	longComment := comment + "c"

	tests := []struct {
		name    string
		fb      Feedback
		wantErr error
	}{
		{name: "valid", fb: Feedback{Title: "Great", Score: 5}},
		{name: "valid with comment at limit", fb: Feedback{Title: "Great", TextComment: &comment, Score: 10}},
		{name: "title at limit", fb: Feedback{Title: strings.Repeat("t", 50), Score: 0}},
		{name: "blank title", fb: Feedback{Title: "   ", Score: 3}, wantErr: ErrFeedbackTitleRequired},
		{name: "title too long", fb: Feedback{Title: strings.Repeat("t", 51), Score: 3}, wantErr: ErrFeedbackTitleTooLong},
		{name: "comment too long", fb: Feedback{Title: "ok", TextComment: &longComment, Score: 3}, wantErr: ErrFeedbackCommentLength},
		{name: "score below range", fb: Feedback{Title: "ok", Score: -1}, wantErr: ErrFeedbackScoreRange},
		{name: "score above range", fb: Feedback{Title: "ok", Score: 11}, wantErr: ErrFeedbackScoreRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fb.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
