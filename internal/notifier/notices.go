package notifier

import (
	"fmt"

	"github.com/causeconnect/backend/internal/models"
)

func ProfileLink(userID uint) string { return fmt.Sprintf("/profile/%d", userID) }
func PostLink(postID uint) string    { return fmt.Sprintf("/posts/%d", postID) }
func EventLink(eventID uint) string  { return fmt.Sprintf("/events/%d", eventID) }
func SquadLink(squadID uint) string  { return fmt.Sprintf("/squads/%d", squadID) }

func Follow(actor *models.User, recipientID uint) Notice {
	return Notice{
		RecipientID: recipientID,
		ActorID:     actor.ID,
		Type:        models.NotificationFollow,
		Title:       "New follower",
		Message:     fmt.Sprintf("%s started following you", actor.DisplayName()),
		Link:        ProfileLink(actor.ID),
	}
}

func PostLike(actor *models.User, post *models.Post) Notice {
	return Notice{
		RecipientID: post.AuthorID,
		ActorID:     actor.ID,
		Type:        models.NotificationLike,
		Title:       "New like",
		Message:     fmt.Sprintf("%s liked your post", actor.DisplayName()),
		Link:        PostLink(post.ID),
	}
}

// CommentLike links to the post or event the comment lives on
func CommentLike(actor *models.User, comment *models.Comment) Notice {
	return Notice{
		RecipientID: comment.AuthorID,
		ActorID:     actor.ID,
		Type:        models.NotificationLike,
		Title:       "New like",
		Message:     fmt.Sprintf("%s liked your comment", actor.DisplayName()),
		Link:        commentLink(comment),
	}
}

func Comment(actor *models.User, recipientID uint, comment *models.Comment, reply bool) Notice {
	msg := fmt.Sprintf("%s commented on your post", actor.DisplayName())
	switch {
	case reply:
		msg = fmt.Sprintf("%s replied to your comment", actor.DisplayName())
	case comment.EventID != nil:
		msg = fmt.Sprintf("%s commented on your event", actor.DisplayName())
	}
	return Notice{
		RecipientID: recipientID,
		ActorID:     actor.ID,
		Type:        models.NotificationComment,
		Title:       "New comment",
		Message:     msg,
		Link:        commentLink(comment),
	}
}

func Award(actor *models.User, comment *models.Comment, award string) Notice {
	return Notice{
		RecipientID: comment.AuthorID,
		ActorID:     actor.ID,
		Type:        models.NotificationAward,
		Title:       "New award",
		Message:     fmt.Sprintf("%s gave your comment a %s award", actor.DisplayName(), award),
		Link:        commentLink(comment),
	}
}

func Support(actor *models.User, event *models.Event) Notice {
	return Notice{
		RecipientID: event.OwnerID,
		ActorID:     actor.ID,
		Type:        models.NotificationSupport,
		Title:       "New supporter",
		Message:     fmt.Sprintf("%s supports %s", actor.DisplayName(), event.Title),
		Link:        EventLink(event.ID),
	}
}

// Donation hides the donor's name when the donation is anonymous
func Donation(donor *models.User, event *models.Event, donation *models.Donation) Notice {
	name := donor.DisplayName()
	if donation.Anonymous {
		name = "Someone"
	}
	amount := donation.Amount
	return Notice{
		RecipientID: event.OwnerID,
		ActorID:     donor.ID,
		Type:        models.NotificationDonation,
		Title:       "New donation",
		Message:     fmt.Sprintf("%s donated %.2f %s to %s", name, donation.Amount, donation.Currency, event.Title),
		Amount:      &amount,
		Link:        EventLink(event.ID),
	}
}

// System notices have no actor and ignore the recipient's preferences
func System(recipientID uint, title, message, link string) Notice {
	return Notice{
		RecipientID: recipientID,
		Type:        models.NotificationSystem,
		Title:       title,
		Message:     message,
		Link:        link,
	}
}

func commentLink(c *models.Comment) string {
	if c.EventID != nil {
		return EventLink(*c.EventID)
	}
	if c.PostID != nil {
		return PostLink(*c.PostID)
	}
	return ""
}
