package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/garajhub/garajhub-bot/dialog"
	"github.com/garajhub/garajhub-bot/storage"
)

// Callback data stays in the compact "verb_id" wire form Telegram buttons
// carry, but it is decoded exactly once, here, into a typed command that
// the dispatcher switches on.

var errUnknownCallback = errors.New("unknown callback data")

type action int

const (
	actionNoop action = iota
	actionCheckSubscription
	actionMainMenu
	actionEditField
	actionSetGender
	actionBackToProfile
	actionStartupPage
	actionJoinStartup
	actionApproveJoin
	actionRejectJoin
	actionMyStartupsPage
	actionViewStartup
	actionBackToMyStartups
	actionViewMembers
	actionViewResults
	actionCompleteStartup
	actionAdminList
	actionAdminViewStartup
	actionAdminApprove
	actionAdminReject
)

type command struct {
	action action
	id     uint                  // startup or request id, depending on action
	page   int                   // 1-based page number
	field  dialog.ProfileField   // actionEditField
	value  string                // actionSetGender
	status storage.StartupStatus // actionAdminList
}

func parseCommand(data string) (command, error) {
	switch data {
	case "check_subscription":
		return command{action: actionCheckSubscription}, nil
	case "back_to_main_menu":
		return command{action: actionMainMenu}, nil
	case "back_to_profile":
		return command{action: actionBackToProfile}, nil
	case "back_to_my_startups":
		return command{action: actionBackToMyStartups}, nil
	case "gender_male":
		return command{action: actionSetGender, value: "Male"}, nil
	case "gender_female":
		return command{action: actionSetGender, value: "Female"}, nil
	case "waiting_approval", "rejected_info", "already_active", "already_completed", "already_rejected", "current_page":
		return command{action: actionNoop}, nil
	}

	type prefixRule struct {
		prefix string
		action action
	}
	for _, rule := range []prefixRule{
		{"startup_page_", actionStartupPage},
		{"my_startup_page_", actionMyStartupsPage},
		{"join_startup_", actionJoinStartup},
		{"approve_join_", actionApproveJoin},
		{"reject_join_", actionRejectJoin},
		{"view_startup_", actionViewStartup},
		{"view_results_", actionViewResults},
		{"complete_startup_", actionCompleteStartup},
		{"admin_view_startup_", actionAdminViewStartup},
		{"admin_approve_", actionAdminApprove},
		{"admin_reject_", actionAdminReject},
	} {
		rest, ok := strings.CutPrefix(data, rule.prefix)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return command{}, fmt.Errorf("%w: %q", errUnknownCallback, data)
		}
		cmd := command{action: rule.action, id: uint(n)}
		if rule.action == actionStartupPage || rule.action == actionMyStartupsPage {
			cmd.id = 0
			cmd.page = int(n)
		}
		return cmd, nil
	}

	if rest, ok := strings.CutPrefix(data, "view_members_"); ok {
		parts := strings.Split(rest, "_")
		if len(parts) != 2 {
			return command{}, fmt.Errorf("%w: %q", errUnknownCallback, data)
		}
		id, err1 := strconv.ParseUint(parts[0], 10, 32)
		page, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return command{}, fmt.Errorf("%w: %q", errUnknownCallback, data)
		}
		return command{action: actionViewMembers, id: uint(id), page: page}, nil
	}

	if rest, ok := strings.CutPrefix(data, "edit_"); ok {
		field := dialog.ProfileField(rest)
		switch field {
		case dialog.FieldFirstName, dialog.FieldLastName, dialog.FieldGender,
			dialog.FieldPhone, dialog.FieldBirthDate, dialog.FieldBio:
			return command{action: actionEditField, field: field}, nil
		}
		return command{}, fmt.Errorf("%w: %q", errUnknownCallback, data)
	}

	for status, prefix := range adminListPrefixes {
		if rest, ok := strings.CutPrefix(data, prefix); ok {
			page, err := strconv.Atoi(rest)
			if err != nil {
				return command{}, fmt.Errorf("%w: %q", errUnknownCallback, data)
			}
			return command{action: actionAdminList, status: status, page: page}, nil
		}
	}

	return command{}, fmt.Errorf("%w: %q", errUnknownCallback, data)
}

var adminListPrefixes = map[storage.StartupStatus]string{
	storage.StartupPending:   "pending_startups_",
	storage.StartupActive:    "active_startups_",
	storage.StartupCompleted: "completed_startups_",
	storage.StartupRejected:  "rejected_startups_",
}

func startupPageData(page int) string { return fmt.Sprintf("startup_page_%d", page) }

func myStartupsPageData(page int) string { return fmt.Sprintf("my_startup_page_%d", page) }

func joinStartupData(id uint) string { return fmt.Sprintf("join_startup_%d", id) }

func approveJoinData(id uint) string { return fmt.Sprintf("approve_join_%d", id) }

func rejectJoinData(id uint) string { return fmt.Sprintf("reject_join_%d", id) }

func viewStartupData(id uint) string { return fmt.Sprintf("view_startup_%d", id) }

func viewResultsData(id uint) string { return fmt.Sprintf("view_results_%d", id) }

func completeStartupData(id uint) string { return fmt.Sprintf("complete_startup_%d", id) }

func adminViewStartupData(id uint) string { return fmt.Sprintf("admin_view_startup_%d", id) }

func adminApproveData(id uint) string { return fmt.Sprintf("admin_approve_%d", id) }

func adminRejectData(id uint) string { return fmt.Sprintf("admin_reject_%d", id) }

func editFieldData(f dialog.ProfileField) string { return "edit_" + string(f) }

func adminListData(status storage.StartupStatus, page int) string {
	return fmt.Sprintf("%s%d", adminListPrefixes[status], page)
}

func viewMembersData(id uint, page int) string {
	return fmt.Sprintf("view_members_%d_%d", id, page)
}
