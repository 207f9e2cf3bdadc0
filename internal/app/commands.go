package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cockpit/internal/store"
	"cockpit/internal/types"
	"cockpit/internal/workspace"
)

const requestTimeout = 4 * time.Second

// waitForUpdateCmd blocks on the service's update channel; the handler
// re-arms it after every delivery so the UI loop stays subscribed.
func waitForUpdateCmd(updates <-chan workspace.Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		return serviceUpdateMsg{update: update, ok: ok}
	}
}

func fetchWorkspacesCmd(service *workspace.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		workspaces, err := service.Workspaces(ctx)
		return workspacesMsg{workspaces: workspaces, err: err}
	}
}

func fetchAppStateCmd(states store.AppStateStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		state, err := states.Load(ctx)
		return appStateMsg{state: state, err: err}
	}
}

func saveAppStateCmd(states store.AppStateStore, state types.AppState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return appStateSavedMsg{err: states.Save(ctx, &state)}
	}
}

func addWorkspaceCmd(service *workspace.Service, path, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		created, err := service.AddWorkspace(ctx, path, name)
		return workspaceAddedMsg{workspace: created, err: err}
	}
}

func removeWorkspaceCmd(service *workspace.Service, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return workspaceRemovedMsg{id: id, err: service.RemoveWorkspace(ctx, id)}
	}
}

func connectCmd(service *workspace.Service, ws types.Workspace) tea.Cmd {
	return func() tea.Msg {
		// Connecting spawns a subprocess and completes a handshake; give it
		// longer than a plain request.
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return connectMsg{workspaceID: ws.ID, err: service.Connect(ctx, ws)}
	}
}

func fetchThreadsCmd(service *workspace.Service, workspaceID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		threads, err := service.ListThreads(ctx, workspaceID)
		return threadsMsg{workspaceID: workspaceID, threads: threads, err: err}
	}
}

func startThreadCmd(service *workspace.Service, workspaceID, fallbackName string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		threadID, err := service.StartThread(ctx, workspaceID, fallbackName)
		return threadStartedMsg{workspaceID: workspaceID, threadID: threadID, err: err}
	}
}

func resumeThreadCmd(service *workspace.Service, workspaceID, threadID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		snapshot, err := service.ResumeThread(ctx, workspaceID, threadID)
		return threadResumedMsg{workspaceID: workspaceID, snapshot: snapshot, err: err}
	}
}

func sendMessageCmd(service *workspace.Service, workspaceID, threadID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		result, err := service.SendMessage(ctx, workspaceID, threadID, text)
		return sendMsg{workspaceID: workspaceID, threadID: threadID, result: result, err: err}
	}
}

func interruptCmd(service *workspace.Service, workspaceID, threadID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return interruptMsg{workspaceID: workspaceID, threadID: threadID, err: service.Interrupt(ctx, workspaceID, threadID)}
	}
}

func renameThreadCmd(service *workspace.Service, workspaceID, threadID, name string) tea.Cmd {
	return func() tea.Msg {
		return renameMsg{workspaceID: workspaceID, threadID: threadID, name: name, err: service.RenameThread(workspaceID, threadID, name)}
	}
}

func setArchivedCmd(service *workspace.Service, workspaceID, threadID string, archived bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return archiveMsg{
			workspaceID: workspaceID,
			threadID:    threadID,
			archived:    archived,
			err:         service.SetArchived(ctx, workspaceID, threadID, archived),
		}
	}
}

func respondApprovalCmd(service *workspace.Service, workspaceID string, requestID int, decision types.ApprovalDecision) tea.Cmd {
	return func() tea.Msg {
		return approvalRespondedMsg{
			workspaceID: workspaceID,
			requestID:   requestID,
			err:         service.RespondApproval(workspaceID, requestID, decision),
		}
	}
}

func fetchModelsCmd(service *workspace.Service, workspaceID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		models, err := service.ListModels(ctx, workspaceID)
		return modelsMsg{workspaceID: workspaceID, models: models, err: err}
	}
}

func copyToClipboardCmd(text, success string) tea.Cmd {
	return func() tea.Msg {
		if err := copyTextToClipboard(text); err != nil {
			return clipboardResultMsg{err: err}
		}
		return clipboardResultMsg{success: success}
	}
}
