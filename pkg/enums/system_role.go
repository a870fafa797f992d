package enums

// RoleAdmin is the role name that unlocks administrative surfaces. Role rows
// are free-form, but the authorization layer only distinguishes admin from
// everyone else.
const RoleAdmin = "admin"
