package models

import "time"

type ContentDomain string

const (
	DomainArticle  ContentDomain = "article"
	DomainRelease  ContentDomain = "release"
	DomainSchedule ContentDomain = "schedule"
)

type WorkflowStatus string

const (
	WorkflowStatusInReview       WorkflowStatus = "in_review"
	WorkflowStatusReadyToPublish WorkflowStatus = "ready_to_publish"
	WorkflowStatusPublished      WorkflowStatus = "published"
)

func (status WorkflowStatus) Valid() bool {
	switch status {
	case WorkflowStatusInReview, WorkflowStatusReadyToPublish, WorkflowStatusPublished:
		return true
	}
	return false
}

// ContentItem is a normalized candidate produced by a source adapter.
// It only lives for the duration of a run; the dedup engine turns it into
// a CanonicalRecord or resolves it to an existing one.
type ContentItem struct {
	ExternalKey string    `json:"external_key"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Year        int       `json:"year,omitempty"`
	Team1       string    `json:"team1,omitempty"`
	Team2       string    `json:"team2,omitempty"`
	MatchDate   string    `json:"match_date,omitempty"`
	Source      string    `json:"source,omitempty"`
	Language    string    `json:"language,omitempty"`
}

// CanonicalRecord is the durable, deduplicated representation of one piece
// of content. Articles, releases and schedule entries share this shape and
// are told apart by Domain. No two records in one domain share a DedupKey.
type CanonicalRecord struct {
	ID          string         `json:"id"`
	Domain      ContentDomain  `json:"domain"`
	DedupKey    string         `json:"dedup_key"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Category    string         `json:"category"`
	Status      WorkflowStatus `json:"status"`
	Published   bool           `json:"published"`
	SourceRef   string         `json:"source_ref,omitempty"`
	PublishedAt time.Time      `json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Group rolls many canonical records up under one (category, title) rubric,
// e.g. all videos of one channel. MemberCount and RepresentativeID are
// derived from MemberIDs after every mutation, never maintained on the side.
type Group struct {
	ID               string    `json:"id"`
	Category         string    `json:"category"`
	Title            string    `json:"title"`
	MemberIDs        []string  `json:"member_ids"`
	RepresentativeID string    `json:"representative_id,omitempty"`
	MemberCount      int       `json:"member_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (group *Group) HasMember(recordID string) bool {
	for _, id := range group.MemberIDs {
		if id == recordID {
			return true
		}
	}
	return false
}

func (group *Group) RemoveMember(recordID string) {
	members := group.MemberIDs[:0]
	for _, id := range group.MemberIDs {
		if id != recordID {
			members = append(members, id)
		}
	}
	group.MemberIDs = members
}
