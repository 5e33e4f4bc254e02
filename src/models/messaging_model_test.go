package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAttachmentTypeFor(t *testing.T) {
	cases := []struct {
		contentType string
		want        AttachmentType
	}{
		{"image/png", AttachmentTypeImage},
		{"image/jpeg", AttachmentTypeImage},
		{"application/pdf", AttachmentTypeDocument},
		{"text/plain", AttachmentTypeDocument},
		{"", AttachmentTypeDocument},
	}
	for _, tc := range cases {
		if got := AttachmentTypeFor(tc.contentType); got != tc.want {
			t.Errorf("AttachmentTypeFor(%q) = %q, want %q", tc.contentType, got, tc.want)
		}
	}
}

func TestHasParticipant(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	conv := Conversation{Participants: []primitive.ObjectID{a, b}}

	if !conv.HasParticipant(a) || !conv.HasParticipant(b) {
		t.Error("participant not recognized")
	}
	if conv.HasParticipant(c) {
		t.Error("outsider recognized as participant")
	}
}
