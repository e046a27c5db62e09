package workspace

import (
	"context"
	"fmt"
	"strings"

	"smart-library/library"
)

func (w *Workspace) membersTab() *tab {
	return &tab{
		entity: "member",
		addCmd: "add",
		list:   w.listMembers,
		show:   w.showMember,
		add:    w.addMember,
		update: w.updateMember,
		remove: w.mgr.DeleteMember,
		confirmDel: func() string {
			return "Delete this member? Their loans will be deleted too."
		},
	}
}

func (w *Workspace) listMembers(ctx context.Context) error {
	members, err := w.mgr.ListMembers(ctx)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		fmt.Fprintln(w.out, "No members registered.")
		return nil
	}

	fmt.Fprintf(w.out, "%-5s %-30s %-30s %-15s %-10s %s\n", "ID", "Name", "Email", "Phone", "Type", "Joined")
	fmt.Fprintln(w.out, strings.Repeat("-", 105))
	for _, m := range members {
		fmt.Fprintf(w.out, "%-5d %-30s %-30s %-15s %-10s %s\n",
			m.ID,
			truncateString(m.Name, 30),
			truncateString(m.Email, 30),
			truncateString(m.Phone, 15),
			m.MembershipType,
			dateString(m.JoinDate))
	}
	return nil
}

func (w *Workspace) showMember(ctx context.Context, id int64) error {
	m, err := w.mgr.GetMember(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Selected member %d:\n", m.ID)
	fmt.Fprintf(w.out, "  Name:   %s\n", m.Name)
	fmt.Fprintf(w.out, "  Email:  %s\n", m.Email)
	fmt.Fprintf(w.out, "  Phone:  %s\n", m.Phone)
	fmt.Fprintf(w.out, "  Type:   %s\n", m.MembershipType)
	fmt.Fprintf(w.out, "  Joined: %s\n", dateString(m.JoinDate))
	return nil
}

func (w *Workspace) memberForm(cur *library.Member) (library.MemberInput, error) {
	var (
		in  library.MemberInput
		err error
	)
	if in.Name, err = w.ask("Name", cur.Name); err != nil {
		return in, err
	}
	if in.Email, err = w.ask("Email", cur.Email); err != nil {
		return in, err
	}
	if in.Phone, err = w.ask("Phone", cur.Phone); err != nil {
		return in, err
	}
	if in.MembershipType, err = w.askOption("Membership type", library.MembershipTypes, cur.MembershipType); err != nil {
		return in, err
	}
	if in.JoinDate, err = w.askDate("Join date", cur.JoinDate, "today"); err != nil {
		return in, err
	}
	return in, nil
}

func (w *Workspace) addMember(ctx context.Context) error {
	in, err := w.memberForm(&library.Member{})
	if err != nil {
		return err
	}
	id, err := w.mgr.CreateMember(ctx, in)
	if err != nil {
		return err
	}
	w.log.Info("member added", "id", id)
	return nil
}

func (w *Workspace) updateMember(ctx context.Context, id int64) error {
	if id == 0 {
		return noSelection("member", "update")
	}
	cur, err := w.mgr.GetMember(ctx, id)
	if err != nil {
		return err
	}
	in, err := w.memberForm(cur)
	if err != nil {
		return err
	}
	return w.mgr.UpdateMember(ctx, id, in)
}
