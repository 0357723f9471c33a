package gen

import (
	"github.com/syssam/veloxts/schema"
)

type (
	// Catalog is the static knowledge about built-in platform collections.
	// It is immutable once built and may be shared between graphs.
	Catalog struct {
		entities map[string]*SystemEntity
		order    []string
	}

	// SystemEntity describes one built-in collection.
	SystemEntity struct {
		// Collection is the raw collection name, e.g. "directus_users".
		Collection string
		// TypeName is the canonical output type name.
		TypeName string
		// IDField and IDKind describe the primary key.
		IDField string
		IDKind  IDKind
		// Singleton and Junction mirror the Entity flags.
		Singleton bool
		Junction  bool
		// Fields are the built-in fields, merged when system fields are enabled.
		Fields []SystemField
		// Relations are the internal links the live schema tends to omit.
		Relations []SystemRelation
	}

	// SystemField is one built-in field.
	SystemField struct {
		Name     string
		Kind     string
		Nullable bool
		Special  []string
	}

	// SystemRelation is a built-in link from Field to Target.
	SystemRelation struct {
		Field  string
		Target string
		Rel    Rel
	}
)

// NewCatalog builds a catalog from the given entities. Later entries with
// the same collection name are ignored.
func NewCatalog(entities ...*SystemEntity) *Catalog {
	c := &Catalog{entities: make(map[string]*SystemEntity, len(entities))}
	for _, e := range entities {
		if _, ok := c.entities[e.Collection]; ok {
			continue
		}
		c.entities[e.Collection] = e
		c.order = append(c.order, e.Collection)
	}
	return c
}

// Lookup returns the built-in entity with the given collection name.
func (c *Catalog) Lookup(collection string) (*SystemEntity, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entities[collection]
	return e, ok
}

// Entities returns the catalog entries in declaration order.
func (c *Catalog) Entities() []*SystemEntity {
	if c == nil {
		return nil
	}
	es := make([]*SystemEntity, 0, len(c.order))
	for _, name := range c.order {
		es = append(es, c.entities[name])
	}
	return es
}

// Relation returns the built-in relation of the given collection field.
func (e *SystemEntity) Relation(field string) (SystemRelation, bool) {
	for _, r := range e.Relations {
		if r.Field == field {
			return r, true
		}
	}
	return SystemRelation{}, false
}

// field constructors keep the catalog table below readable.
func sysString(name string) SystemField { return SystemField{Name: name, Kind: schema.KindString, Nullable: true} }
func sysText(name string) SystemField { return SystemField{Name: name, Kind: schema.KindText, Nullable: true} }
func sysUUID(name string) SystemField { return SystemField{Name: name, Kind: schema.KindUUID, Nullable: true} }
func sysInt(name string) SystemField { return SystemField{Name: name, Kind: schema.KindInteger, Nullable: true} }
func sysBool(name string) SystemField { return SystemField{Name: name, Kind: schema.KindBoolean} }
func sysTime(name string) SystemField { return SystemField{Name: name, Kind: schema.KindTimestamp, Nullable: true} }
func sysJSON(name string) SystemField { return SystemField{Name: name, Kind: schema.KindJSON, Nullable: true} }
func sysCSV(name string) SystemField { return SystemField{Name: name, Kind: schema.KindCSV, Nullable: true} }

func sysKey(name string, kind IDKind) SystemField {
	f := SystemField{Name: name, Kind: schema.KindUUID}
	if kind == IDNumber {
		f.Kind = schema.KindInteger
	}
	return f
}

func sysAlias(name string) SystemField {
	return SystemField{Name: name, Kind: schema.KindAlias, Nullable: true, Special: []string{schema.SpecialO2M}}
}

func belongsTo(field, target string) SystemRelation { return SystemRelation{Field: field, Target: target, Rel: M2O} }
func hasMany(field, target string) SystemRelation { return SystemRelation{Field: field, Target: target, Rel: O2M} }

// DefaultCatalog returns a new catalog describing the platform's
// built-in collections.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		&SystemEntity{
			Collection: "directus_users", TypeName: "DirectusUser", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("first_name"), sysString("last_name"), sysString("email"), sysString("password"),
				sysString("location"), sysString("title"), sysText("description"), sysJSON("tags"), sysUUID("avatar"),
				sysString("language"), sysString("tfa_secret"), sysString("status"), sysUUID("role"), sysString("token"),
				sysTime("last_access"), sysString("last_page"), sysString("provider"), sysString("external_identifier"),
				sysJSON("auth_data"), sysBool("email_notifications"), sysString("appearance"), sysString("theme_dark"),
				sysString("theme_light"), sysJSON("theme_light_overrides"), sysJSON("theme_dark_overrides"), sysAlias("policies"),
			},
			Relations: []SystemRelation{
				belongsTo("avatar", "directus_files"), belongsTo("role", "directus_roles"),
				hasMany("policies", "directus_access"),
			},
		},
		&SystemEntity{
			Collection: "directus_files", TypeName: "DirectusFile", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("storage"), sysString("filename_disk"), sysString("filename_download"),
				sysString("title"), sysString("type"), sysUUID("folder"), sysUUID("uploaded_by"), sysTime("created_on"),
				sysUUID("modified_by"), sysTime("modified_on"), sysString("charset"),
				{Name: "filesize", Kind: schema.KindBigInteger, Nullable: true}, sysInt("width"), sysInt("height"),
				sysInt("duration"), sysString("embed"), sysText("description"), sysText("location"), sysJSON("tags"),
				sysJSON("metadata"), sysInt("focal_point_x"), sysInt("focal_point_y"), sysString("tus_id"),
				sysJSON("tus_data"), sysTime("uploaded_on"),
			},
			Relations: []SystemRelation{
				belongsTo("folder", "directus_folders"), belongsTo("uploaded_by", "directus_users"),
				belongsTo("modified_by", "directus_users"),
			},
		},
		&SystemEntity{
			Collection: "directus_folders", TypeName: "DirectusFolder", IDField: "id", IDKind: IDString,
			Fields:     []SystemField{sysKey("id", IDString), sysString("name"), sysUUID("parent")},
			Relations:  []SystemRelation{belongsTo("parent", "directus_folders")},
		},
		&SystemEntity{
			Collection: "directus_roles", TypeName: "DirectusRole", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("name"), sysString("icon"), sysText("description"), sysUUID("parent"),
				sysAlias("children"), sysAlias("policies"), sysAlias("users"),
			},
			Relations: []SystemRelation{
				belongsTo("parent", "directus_roles"), hasMany("children", "directus_roles"),
				hasMany("policies", "directus_access"), hasMany("users", "directus_users"),
			},
		},
		&SystemEntity{
			Collection: "directus_policies", TypeName: "DirectusPolicy", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("name"), sysString("icon"), sysText("description"), sysCSV("ip_access"),
				sysBool("enforce_tfa"), sysBool("admin_access"), sysBool("app_access"), sysAlias("permissions"),
				sysAlias("users"), sysAlias("roles"),
			},
			Relations: []SystemRelation{
				hasMany("permissions", "directus_permissions"), hasMany("users", "directus_access"),
				hasMany("roles", "directus_access"),
			},
		},
		&SystemEntity{
			Collection: "directus_access", TypeName: "DirectusAccess", IDField: "id", IDKind: IDString, Junction: true,
			Fields:     []SystemField{sysKey("id", IDString), sysUUID("role"), sysUUID("user"), sysUUID("policy"), sysInt("sort")},
			Relations: []SystemRelation{
				belongsTo("role", "directus_roles"), belongsTo("user", "directus_users"), belongsTo("policy", "directus_policies"),
			},
		},
		&SystemEntity{
			Collection: "directus_permissions", TypeName: "DirectusPermission", IDField: "id", IDKind: IDNumber,
			Fields: []SystemField{
				sysKey("id", IDNumber), sysString("collection"), sysString("action"), sysJSON("permissions"),
				sysJSON("validation"), sysJSON("presets"), sysCSV("fields"), sysUUID("policy"),
			},
			Relations: []SystemRelation{belongsTo("policy", "directus_policies")},
		},
		&SystemEntity{
			Collection: "directus_activity", TypeName: "DirectusActivity", IDField: "id", IDKind: IDNumber,
			Fields: []SystemField{
				sysKey("id", IDNumber), sysString("action"), sysUUID("user"), sysTime("timestamp"), sysString("ip"),
				sysText("user_agent"), sysString("collection"), sysString("item"), sysString("origin"), sysAlias("revisions"),
			},
			Relations: []SystemRelation{
				belongsTo("user", "directus_users"), hasMany("revisions", "directus_revisions"),
			},
		},
		&SystemEntity{
			Collection: "directus_revisions", TypeName: "DirectusRevision", IDField: "id", IDKind: IDNumber,
			Fields: []SystemField{
				sysKey("id", IDNumber), sysInt("activity"), sysString("collection"), sysString("item"), sysJSON("data"),
				sysJSON("delta"), sysInt("parent"), sysUUID("version"),
			},
			Relations: []SystemRelation{
				belongsTo("activity", "directus_activity"), belongsTo("parent", "directus_revisions"),
				belongsTo("version", "directus_versions"),
			},
		},
		&SystemEntity{
			Collection: "directus_versions", TypeName: "DirectusVersion", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("key"), sysString("name"), sysString("collection"), sysString("item"), sysString("hash"),
				sysTime("date_created"), sysTime("date_updated"), sysUUID("user_created"), sysUUID("user_updated"),
				sysJSON("delta"),
			},
			Relations: []SystemRelation{
				belongsTo("user_created", "directus_users"), belongsTo("user_updated", "directus_users"),
			},
		},
		&SystemEntity{
			Collection: "directus_settings", TypeName: "DirectusSettings", IDField: "id", IDKind: IDNumber, Singleton: true,
			Fields: []SystemField{
				sysKey("id", IDNumber), sysString("project_name"), sysString("project_url"), sysString("project_color"),
				sysUUID("project_logo"), sysUUID("public_foreground"), sysUUID("public_background"),
				sysText("public_note"), sysInt("auth_login_attempts"), sysString("storage_asset_transform"),
				sysText("custom_css"), sysString("default_language"), sysString("default_appearance"),
				sysJSON("module_bar"), sysUUID("public_registration_role"),
			},
			Relations: []SystemRelation{
				belongsTo("project_logo", "directus_files"), belongsTo("public_foreground", "directus_files"),
				belongsTo("public_background", "directus_files"), belongsTo("public_registration_role", "directus_roles"),
			},
		},
		&SystemEntity{
			Collection: "directus_presets", TypeName: "DirectusPreset", IDField: "id", IDKind: IDNumber,
			Fields: []SystemField{
				sysKey("id", IDNumber), sysString("bookmark"), sysUUID("user"), sysUUID("role"), sysString("collection"),
				sysString("search"), sysString("layout"), sysJSON("layout_query"), sysJSON("layout_options"),
				sysInt("refresh_interval"), sysJSON("filter"), sysString("icon"), sysString("color"),
			},
			Relations: []SystemRelation{belongsTo("user", "directus_users"), belongsTo("role", "directus_roles")},
		},
		&SystemEntity{
			Collection: "directus_notifications", TypeName: "DirectusNotification", IDField: "id", IDKind: IDNumber,
			Fields: []SystemField{
				sysKey("id", IDNumber), sysTime("timestamp"), sysString("status"), sysUUID("recipient"), sysUUID("sender"),
				sysString("subject"), sysText("message"), sysString("collection"), sysString("item"),
			},
			Relations: []SystemRelation{belongsTo("recipient", "directus_users"), belongsTo("sender", "directus_users")},
		},
		&SystemEntity{
			Collection: "directus_shares", TypeName: "DirectusShare", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("name"), sysString("collection"), sysString("item"), sysUUID("role"),
				sysString("password"), sysUUID("user_created"), sysTime("date_created"), sysTime("date_start"),
				sysTime("date_end"), sysInt("times_used"), sysInt("max_uses"),
			},
			Relations: []SystemRelation{belongsTo("role", "directus_roles"), belongsTo("user_created", "directus_users")},
		},
		&SystemEntity{
			Collection: "directus_dashboards", TypeName: "DirectusDashboard", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("name"), sysString("icon"), sysText("note"), sysTime("date_created"),
				sysUUID("user_created"), sysString("color"), sysAlias("panels"),
			},
			Relations: []SystemRelation{
				belongsTo("user_created", "directus_users"), hasMany("panels", "directus_panels"),
			},
		},
		&SystemEntity{
			Collection: "directus_panels", TypeName: "DirectusPanel", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysUUID("dashboard"), sysString("name"), sysString("icon"), sysString("color"),
				sysBool("show_header"), sysText("note"), sysString("type"), sysInt("position_x"), sysInt("position_y"),
				sysInt("width"), sysInt("height"), sysJSON("options"), sysTime("date_created"), sysUUID("user_created"),
			},
			Relations: []SystemRelation{
				belongsTo("dashboard", "directus_dashboards"), belongsTo("user_created", "directus_users"),
			},
		},
		&SystemEntity{
			Collection: "directus_flows", TypeName: "DirectusFlow", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("name"), sysString("icon"), sysString("color"), sysText("description"),
				sysString("status"), sysString("trigger"), sysString("accountability"), sysJSON("options"), sysUUID("operation"),
				sysTime("date_created"), sysUUID("user_created"), sysAlias("operations"),
			},
			Relations: []SystemRelation{
				belongsTo("operation", "directus_operations"), belongsTo("user_created", "directus_users"),
				hasMany("operations", "directus_operations"),
			},
		},
		&SystemEntity{
			Collection: "directus_operations", TypeName: "DirectusOperation", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("name"), sysString("key"), sysString("type"), sysInt("position_x"),
				sysInt("position_y"), sysJSON("options"), sysUUID("resolve"), sysUUID("reject"), sysUUID("flow"),
				sysTime("date_created"), sysUUID("user_created"),
			},
			Relations: []SystemRelation{
				belongsTo("resolve", "directus_operations"), belongsTo("reject", "directus_operations"),
				belongsTo("flow", "directus_flows"), belongsTo("user_created", "directus_users"),
			},
		},
		&SystemEntity{
			Collection: "directus_comments", TypeName: "DirectusComment", IDField: "id", IDKind: IDString,
			Fields: []SystemField{
				sysKey("id", IDString), sysString("collection"), sysString("item"), sysText("comment"),
				sysTime("date_created"), sysTime("date_updated"), sysUUID("user_created"), sysUUID("user_updated"),
			},
			Relations: []SystemRelation{
				belongsTo("user_created", "directus_users"), belongsTo("user_updated", "directus_users"),
			},
		},
		&SystemEntity{
			Collection: "directus_translations", TypeName: "DirectusTranslation", IDField: "id", IDKind: IDString,
			Fields:     []SystemField{sysKey("id", IDString), sysString("language"), sysString("key"), sysText("value")},
		},
		&SystemEntity{
			Collection: "directus_collections", TypeName: "DirectusCollection", IDField: "collection", IDKind: IDString,
			Fields: []SystemField{
				{Name: "collection", Kind: schema.KindString}, sysString("icon"), sysText("note"),
				sysBool("hidden"), sysBool("singleton"), sysJSON("translations"), sysString("sort_field"), sysString("group"),
			},
		},
		&SystemEntity{
			Collection: "directus_fields", TypeName: "DirectusField", IDField: "id", IDKind: IDNumber,
			Fields: []SystemField{
				sysKey("id", IDNumber), sysString("collection"), sysString("field"), sysCSV("special"), sysString("interface"),
				sysJSON("options"), sysBool("hidden"), sysBool("readonly"), sysBool("required"), sysInt("sort"), sysText("note"),
			},
		},
		&SystemEntity{
			Collection: "directus_relations", TypeName: "DirectusRelation", IDField: "id", IDKind: IDNumber,
			Fields: []SystemField{
				sysKey("id", IDNumber), sysString("many_collection"), sysString("many_field"), sysString("one_collection"),
				sysString("one_field"), sysString("one_collection_field"), sysCSV("one_allowed_collections"),
				sysString("junction_field"), sysString("sort_field"), sysString("one_deselect_action"),
			},
		},
		&SystemEntity{
			Collection: "directus_extensions", TypeName: "DirectusExtension", IDField: "id", IDKind: IDString,
			Fields:     []SystemField{sysKey("id", IDString), sysBool("enabled"), sysString("folder"), sysString("source"), sysString("bundle")},
		},
	)
}
