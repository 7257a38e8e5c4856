package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

type MemberService struct {
	client *api.Client
}

func NewMemberService(client *api.Client) *MemberService {
	return &MemberService{client: client}
}

func memberPath(groupID, memberID string) string {
	return groupPath(groupID) + "/members/" + url.PathEscape(memberID)
}

// List returns approved members, or only pending requests when pending is true
func (s *MemberService) List(ctx context.Context, groupID string, pending bool) ([]domain.Member, error) {
	var members []domain.Member
	_, err := s.client.Get(ctx, groupPath(groupID)+"/members", &members,
		api.WithQuery("include_pending", strconv.FormatBool(pending)))
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", groupID, err)
	}
	return members, nil
}

func (s *MemberService) Approve(ctx context.Context, groupID, memberID string) error {
	if _, err := s.client.Post(ctx, memberPath(groupID, memberID)+"/approve", nil, nil); err != nil {
		return fmt.Errorf("approve member %s: %w", memberID, err)
	}
	return nil
}

// Remove deletes a membership. It serves both rejecting a pending request
// and removing an approved member.
func (s *MemberService) Remove(ctx context.Context, groupID, memberID string) error {
	if _, err := s.client.Delete(ctx, memberPath(groupID, memberID), nil); err != nil {
		return fmt.Errorf("remove member %s: %w", memberID, err)
	}
	return nil
}

func (s *MemberService) MakeAdmin(ctx context.Context, groupID, memberID string) error {
	if _, err := s.client.Post(ctx, memberPath(groupID, memberID)+"/make-admin", nil, nil); err != nil {
		return fmt.Errorf("make member %s admin: %w", memberID, err)
	}
	return nil
}
