package cli

import (
	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/spf13/cobra"
)

func newLoginCommand(app *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := storefront.NewEmail(email)
			if err != nil {
				return err
			}
			if err := app.store.Login(cmd.Context(), normalized, password); err != nil {
				return err
			}
			return app.printUser(app.store.Snapshot().User)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCommand(app *runtime) *cobra.Command {
	var input storefront.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := storefront.NewEmail(input.Email)
			if err != nil {
				return err
			}
			input.Email = normalized
			if err := app.store.Register(cmd.Context(), input); err != nil {
				return err
			}
			return app.printUser(app.store.Snapshot().User)
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&input.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password (required)")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "phone number")
	for _, name := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newLogoutCommand(app *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.store.Logout(cmd.Context())
			return app.printer.message("Logged out")
		},
	}
}

func newWhoamiCommand(app *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			return app.printUser(app.store.Snapshot().User)
		},
	}
}

func newProfileCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	var input storefront.ProfileInput
	update := &cobra.Command{
		Use:   "update",
		Short: "Change name and phone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			user, err := app.client.Users.UpdateProfile(cmd.Context(), input)
			if err != nil {
				return err
			}
			return app.printUser(&user)
		},
	}
	update.Flags().StringVar(&input.Name, "name", "", "display name (required)")
	update.Flags().StringVar(&input.Phone, "phone", "", "phone number")
	_ = update.MarkFlagRequired("name")

	var oldPassword, newPassword string
	password := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			if err := app.client.Users.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
				return err
			}
			return app.printer.message("Password updated")
		},
	}
	password.Flags().StringVar(&oldPassword, "old", "", "current password (required)")
	password.Flags().StringVar(&newPassword, "new", "", "new password (required)")
	_ = password.MarkFlagRequired("old")
	_ = password.MarkFlagRequired("new")

	cmd.AddCommand(update, password)
	return cmd
}

func newAddressCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "address",
		Aliases: []string{"addresses"},
		Short:   "Manage delivery addresses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			addresses, err := app.client.Addresses.List(cmd.Context())
			if err != nil {
				return err
			}
			return app.printAddresses(addresses)
		},
	}

	var input storefront.AddressInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Save a new address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			address, err := app.client.Addresses.Add(cmd.Context(), input)
			if err != nil {
				return err
			}
			return app.printAddresses([]storefront.Address{address})
		},
	}
	add.Flags().StringVar(&input.Label, "label", "Home", "address label")
	add.Flags().StringVar(&input.Line1, "line1", "", "street address (required)")
	add.Flags().StringVar(&input.City, "city", "", "city (required)")
	add.Flags().StringVar(&input.State, "state", "", "state")
	add.Flags().StringVar(&input.Pincode, "pincode", "", "postal code (required)")
	for _, name := range []string{"line1", "city", "pincode"} {
		_ = add.MarkFlagRequired(name)
	}

	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			if err := app.client.Addresses.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return app.printer.message("Address deleted")
		},
	}

	makeDefault := &cobra.Command{
		Use:   "default ID",
		Short: "Make an address the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			if err := app.client.Addresses.SetDefault(cmd.Context(), args[0]); err != nil {
				return err
			}
			return app.printer.message("Default address updated")
		},
	}

	cmd.AddCommand(list, add, remove, makeDefault)
	return cmd
}

func (app *runtime) printUser(user *storefront.User) error {
	if user == nil {
		return errNotLoggedIn
	}
	return app.printer.fields(user,
		[2]string{"ID", user.ID},
		[2]string{"Name", user.Name},
		[2]string{"Email", user.Email},
		[2]string{"Phone", user.Phone},
		[2]string{"Role", string(user.Role)},
	)
}

func (app *runtime) printAddresses(addresses []storefront.Address) error {
	rows := make([][]string, 0, len(addresses))
	for _, address := range addresses {
		marker := ""
		if address.Default() {
			marker = "*"
		}
		rows = append(rows, []string{address.ID, marker, address.Label, address.Line1, address.City, address.State, address.Pincode})
	}
	return app.printer.emit(addresses, []string{"ID", "DEFAULT", "LABEL", "LINE", "CITY", "STATE", "PINCODE"}, rows)
}
